package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/pocketbase"
)

var (
	ErrNotFound = errors.New("order not found")
	ErrInvalid  = errors.New("invalid order")
)

// Publisher pushes order events to the stream. Satisfied by kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	col      *pocketbase.Collection
	producer Publisher // nil disables events
	service  string
}

func NewService(client *pocketbase.Client, collection string, producer Publisher, serviceName string) *Service {
	return &Service{col: client.Collection(collection), producer: producer, service: serviceName}
}

func (o Order) validate() error {
	var missing []string
	if strings.TrimSpace(o.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(o.CustomerEmail) == "" {
		missing = append(missing, "customerEmail")
	}
	if len(o.Items) == 0 {
		missing = append(missing, "items")
	}
	if o.TotalAmount.LessThanOrEqual(decimal.Zero) {
		missing = append(missing, "totalAmount")
	}
	if (o.ShippingAddress == ShippingAddress{}) {
		missing = append(missing, "shippingAddress")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// Create persists a new order and emits OrderCreated. Defaults: status
// processing, createdAt now.
func (s *Service) Create(ctx context.Context, o Order) (Order, error) {
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	if o.Status == "" {
		o.Status = StatusProcessing
	}
	if !o.Status.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, o.Status)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.ID = ""

	var created record
	if err := s.col.Create(ctx, o, &created); err != nil {
		return Order{}, err
	}
	out := created.toOrder()

	s.publish(ctx, EventOrderCreated, out.ID, OrderCreatedPayload{
		OrderID:       out.ID,
		CustomerEmail: out.CustomerEmail,
		Items:         out.Items,
		TotalAmount:   out.TotalAmount,
		Status:        out.Status,
	})
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Order, error) {
	var rec record
	if err := s.col.Get(ctx, id, &rec); err != nil {
		if errors.Is(err, pocketbase.ErrNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return rec.toOrder(), nil
}

var filterQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// GetByEmail returns the customer's orders, newest first. An empty slice
// is a valid result, not an error.
func (s *Service) GetByEmail(ctx context.Context, email string) ([]Order, error) {
	res, err := s.col.List(ctx, pocketbase.ListOptions{
		PerPage: 50,
		Sort:    "-created",
		Filter:  fmt.Sprintf(`customerEmail="%s"`, filterQuoter.Replace(email)),
	})
	if err != nil {
		return nil, err
	}
	recs, err := pocketbase.DecodeItems[record](res)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toOrder())
	}
	return out, nil
}

// List returns the most recent orders across all customers.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	res, err := s.col.List(ctx, pocketbase.ListOptions{PerPage: 50, Sort: "-created"})
	if err != nil {
		return nil, err
	}
	recs, err := pocketbase.DecodeItems[record](res)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toOrder())
	}
	return out, nil
}

// UpdateStatus moves the order to the given status and emits
// OrderStatusChanged. Transition policy beyond enum membership belongs to
// the external actor driving fulfillment.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	old, err := s.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}

	var updated record
	if err := s.col.Update(ctx, id, map[string]any{"status": status}, &updated); err != nil {
		if errors.Is(err, pocketbase.ErrNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	out := updated.toOrder()

	s.publish(ctx, EventOrderStatusChanged, out.ID, OrderStatusChangedPayload{
		OrderID:   out.ID,
		OldStatus: old.Status,
		NewStatus: out.Status,
	})
	return out, nil
}

func (s *Service) publish(ctx context.Context, eventType, orderID string, payload any) {
	if s.producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
