package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidForm = errors.New("invalid shipping form")
)

// Form is the shipping form. Every field is required.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

func (f Form) Validate() error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"zipCode", f.ZipCode},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidForm, strings.Join(missing, ", "))
	}
	return nil
}

// Creator is the slice of the orders service checkout needs.
type Creator interface {
	Create(ctx context.Context, o orders.Order) (orders.Order, error)
}

type Service struct {
	orders Creator
}

func NewService(creator Creator) *Service {
	return &Service{orders: creator}
}

// Submit turns the cart into an order. The cart and form are validated
// before any remote call; on success the cart is cleared, on failure it is
// left untouched so the shopper can retry.
func (s *Service) Submit(ctx context.Context, c *cart.Cart, f Form) (orders.Order, error) {
	items := c.Items()
	if len(items) == 0 {
		return orders.Order{}, ErrEmptyCart
	}
	if err := f.Validate(); err != nil {
		return orders.Order{}, err
	}

	draft := orders.Order{
		CustomerName:  f.Name,
		CustomerEmail: f.Email,
		CustomerPhone: f.Phone,
		Items:         snapshot(items),
		TotalAmount:   c.Total(),
		Status:        orders.StatusProcessing,
		ShippingAddress: orders.ShippingAddress{
			Name:    f.Name,
			Address: f.Address,
			City:    f.City,
			ZipCode: f.ZipCode,
			Phone:   f.Phone,
		},
		CreatedAt: time.Now().UTC(),
	}

	placed, err := s.orders.Create(ctx, draft)
	if err != nil {
		return orders.Order{}, err
	}
	c.Clear(ctx)
	return placed, nil
}

// snapshot copies cart lines by value; the order must not share state with
// the live cart.
func snapshot(items []cart.Item) []orders.LineItem {
	out := make([]orders.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, orders.LineItem{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}
	return out
}
