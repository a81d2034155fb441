package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a read-only record from the products collection. Price
// tolerates both JSON numbers and string-encoded numbers on decode.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock,omitempty"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	// PocketBase dates are "YYYY-MM-DD HH:MM:SS.sssZ", not RFC 3339.
	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`
}
