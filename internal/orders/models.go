package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a cart line frozen into the order at submission time.
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Phone   string `json:"phone"`
}

type Order struct {
	ID              string          `json:"id,omitempty"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// record is the wire shape of an order in the orders collection. Depending
// on the field type configured in the store, items and shippingAddress come
// back either as nested JSON or as a JSON-encoded string; the field types
// below absorb both so callers only ever see the structured shape.
type record struct {
	ID              string          `json:"id,omitempty"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Items           lineItems       `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	ShippingAddress address         `json:"shippingAddress"`
	CreatedAt       string          `json:"createdAt"`
}

type lineItems []LineItem

func (f *lineItems) UnmarshalJSON(b []byte) error {
	if inner, ok := unquote(b); ok {
		if len(inner) == 0 {
			*f = nil
			return nil
		}
		b = inner
	}
	if string(b) == "null" {
		*f = nil
		return nil
	}
	return json.Unmarshal(b, (*[]LineItem)(f))
}

type address ShippingAddress

func (f *address) UnmarshalJSON(b []byte) error {
	if inner, ok := unquote(b); ok {
		if len(inner) == 0 {
			*f = address{}
			return nil
		}
		b = inner
	}
	if string(b) == "null" {
		*f = address{}
		return nil
	}
	return json.Unmarshal(b, (*ShippingAddress)(f))
}

// unquote reports whether b is a JSON string and, if so, returns the
// encoded document inside it.
func unquote(b []byte) ([]byte, bool) {
	if len(b) == 0 || b[0] != '"' {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	return []byte(s), true
}

// createdAt layouts seen from the store: RFC 3339 from our own writes,
// space-separated from PocketBase date fields.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999Z07:00",
	"2006-01-02 15:04:05.999Z",
}

func (r record) toOrder() Order {
	var created time.Time
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			created = t
			break
		}
	}
	return Order{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		Items:           []LineItem(r.Items),
		TotalAmount:     r.TotalAmount,
		Status:          r.Status,
		ShippingAddress: ShippingAddress(r.ShippingAddress),
		CreatedAt:       created,
	}
}
