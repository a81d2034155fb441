package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/pocketbase"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store
	pb := pocketbase.New(cfg.PocketBaseURL)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	prod.Start(ctx)

	// Services
	catalogSvc := catalog.NewService(pb, cfg.ProductsCollection, rdb)
	orderSvc := orders.NewService(pb, cfg.OrdersCollection, prod, cfg.ServiceName)
	checkoutSvc := checkout.NewService(orderSvc)
	sessions := session.NewManager(func(sid string) cart.Store {
		return cart.NewRedisStore(rdb, sid)
	})

	// Handlers
	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Catalog: catalogSvc}).Register(router)
	(&httpx.OrdersHandler{Orders: orderSvc, Redis: rdb}).Register(router)
	(&httpx.CartHandler{Sessions: sessions, Catalog: catalogSvc}).Register(router)
	(&httpx.CheckoutHandler{Sessions: sessions, Checkout: checkoutSvc}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	prod.WaitClosed() // drain
}
