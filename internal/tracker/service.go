package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

// Service consumes order events and keeps the order-status cache warm so
// status lookups skip the record store.
type Service struct {
	Redis *redis.Client
	Name  string // consumer name, namespaces the dedup keys
}

func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		log.Printf("tracker: skip undecodable event at %d: %v", m.Offset, err)
		return nil // poison message, commit past it
	}

	// At-least-once delivery: drop replays by event id.
	dedupKey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	fresh, err := s.Redis.SetNX(ctx, dedupKey, 1, redisx.TTLDedup).Result()
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.cacheStatus(ctx, p.OrderID, p.Status)
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.cacheStatus(ctx, p.OrderID, p.NewStatus)
	default:
		return nil
	}
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, status orders.Status) error {
	body, err := json.Marshal(map[string]any{"status": status})
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	return s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
