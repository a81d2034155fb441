package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

func setup(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return &Service{Redis: rdb, Name: "tracker"}, mr
}

func message(t *testing.T, eventID, eventType string, payload any) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "storefront-api",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Key: []byte("o1"), Value: kafkax.MustMarshal(env)}
}

func TestHandle_OrderCreatedCachesStatus(t *testing.T) {
	svc, mr := setup(t)

	m := message(t, uuid.NewString(), orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID: "o1",
		Status:  orders.StatusProcessing,
	})
	require.NoError(t, svc.Handle(context.Background(), m))

	cached, err := mr.Get("order_status:o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"processing"}`, cached)
}

func TestHandle_StatusChangeOverwrites(t *testing.T) {
	svc, mr := setup(t)

	require.NoError(t, svc.Handle(context.Background(),
		message(t, uuid.NewString(), orders.EventOrderCreated, orders.OrderCreatedPayload{
			OrderID: "o1", Status: orders.StatusProcessing,
		})))
	require.NoError(t, svc.Handle(context.Background(),
		message(t, uuid.NewString(), orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{
			OrderID: "o1", OldStatus: orders.StatusProcessing, NewStatus: orders.StatusShipped,
		})))

	cached, err := mr.Get("order_status:o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"shipped"}`, cached)
}

func TestHandle_ReplayedEventIsDropped(t *testing.T) {
	svc, mr := setup(t)

	id := uuid.NewString()
	first := message(t, id, orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID: "o1", Status: orders.StatusProcessing,
	})
	require.NoError(t, svc.Handle(context.Background(), first))

	// a replay with the same event id must not clobber newer state
	require.NoError(t, svc.Handle(context.Background(),
		message(t, uuid.NewString(), orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{
			OrderID: "o1", NewStatus: orders.StatusDelivered,
		})))
	require.NoError(t, svc.Handle(context.Background(), first))

	cached, err := mr.Get("order_status:o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"delivered"}`, cached)
}

func TestHandle_UndecodableMessageIsSkipped(t *testing.T) {
	svc, _ := setup(t)
	err := svc.Handle(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.NoError(t, err, "poison messages must be committed past, not retried forever")
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	svc, mr := setup(t)
	m := message(t, uuid.NewString(), "SomethingElse", map[string]any{"order_id": "o9"})
	require.NoError(t, svc.Handle(context.Background(), m))
	assert.False(t, mr.Exists("order_status:o9"))
}
