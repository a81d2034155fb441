package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/tracker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &tracker.Service{Redis: rdb, Name: "tracker"}
	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, "order-tracker", orders.TopicOrderEvents, 4)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("shutting down...")
		cancel()
	}()

	log.Printf("tracker consuming %s", orders.TopicOrderEvents)
	if err := consumer.Start(ctx, svc.Handle); err != nil {
		log.Fatalf("consumer: %v", err)
	}
}
