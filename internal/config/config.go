package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr           string
	PocketBaseURL      string
	ProductsCollection string
	OrdersCollection   string
	RedisAddr          string
	KafkaBrokers       []string
	ServiceName        string
}

func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		PocketBaseURL:      getenv("POCKETBASE_URL", "http://127.0.0.1:8090"),
		ProductsCollection: getenv("PRODUCTS_COLLECTION", "products"),
		OrdersCollection:   getenv("ORDERS_COLLECTION", "orders"),
		RedisAddr:          getenv("REDIS_ADDR", "redis:6379"),
		KafkaBrokers:       splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		ServiceName:        getenv("SERVICE_NAME", "storefront-api"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
