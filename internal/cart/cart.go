package cart

import (
	"context"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/catalog"
)

// Item is a product line in the cart. Quantity is always >= 1; a quantity
// update to zero or below removes the line instead.
type Item struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Cart holds one session's items, mirrored to a Store on every mutation.
// The justCompleted flag marks that the cart was emptied by a successful
// checkout rather than by the shopper; the confirmation view reads it once
// and resets it.
type Cart struct {
	mu            sync.Mutex
	items         []Item
	justCompleted bool
	store         Store
}

func New(store Store) *Cart {
	return &Cart{store: store}
}

// Load rehydrates a cart from its store. Malformed or unreadable stored
// data is discarded and the cart starts empty.
func Load(ctx context.Context, store Store) *Cart {
	c := &Cart{store: store}
	items, err := store.Load(ctx)
	if err != nil {
		log.Printf("cart: discard stored snapshot: %v", err)
		return c
	}
	c.items = items
	return c
}

// Add appends the product with quantity 1, or bumps its quantity by 1 if
// it is already in the cart. Line order is preserved.
func (c *Cart) Add(ctx context.Context, p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			c.persist(ctx)
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
	c.persist(ctx)
}

// Remove drops the line with the given product id; no-op if absent.
func (c *Cart) Remove(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ctx, productID)
}

func (c *Cart) removeLocked(ctx context.Context, productID string) {
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist(ctx)
			return
		}
	}
}

// UpdateQuantity sets the line's quantity. Zero or negative removes the
// line; an unknown id is a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.removeLocked(ctx, productID)
		return
	}
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity = quantity
			c.persist(ctx)
			return
		}
	}
}

// Clear empties the cart, drops the stored slot and raises the
// order-completion flag.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.justCompleted = true
	if err := c.store.Clear(ctx); err != nil {
		log.Printf("cart: clear store: %v", err)
	}
}

// ResetOrderCompletion lowers the completion flag. Idempotent.
func (c *Cart) ResetOrderCompletion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.justCompleted = false
}

func (c *Cart) JustCompletedOrder() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.justCompleted
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the exact sum of price*quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// ProductQuantity returns the quantity of the given product, or 0.
func (c *Cart) ProductQuantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == productID {
			return it.Quantity
		}
	}
	return 0
}

// persist writes the full snapshot. The in-memory cart stays authoritative
// when the store is unavailable; mutations never fail.
func (c *Cart) persist(ctx context.Context) {
	snapshot := make([]Item, len(c.items))
	copy(snapshot, c.items)
	if err := c.store.Save(ctx, snapshot); err != nil {
		log.Printf("cart: persist snapshot: %v", err)
	}
}
