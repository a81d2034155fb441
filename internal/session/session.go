package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-storefront/internal/cart"
)

// Session is one shopper's state: their cart and the in-flight checkout
// guard. Carts survive process restarts through their store slot.
type Session struct {
	ID   string
	Cart *cart.Cart

	submitting atomic.Bool
}

// BeginCheckout marks a submission in flight. It reports false when one is
// already pending; the caller must reject the duplicate.
func (s *Session) BeginCheckout() bool {
	return s.submitting.CompareAndSwap(false, true)
}

func (s *Session) EndCheckout() {
	s.submitting.Store(false)
}

// StoreFunc builds the snapshot store for a session id.
type StoreFunc func(sessionID string) cart.Store

// Manager hands out sessions keyed by id, creating and rehydrating them on
// first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	stores   StoreFunc
}

func NewManager(stores StoreFunc) *Manager {
	return &Manager{sessions: map[string]*Session{}, stores: stores}
}

func NewID() string { return uuid.NewString() }

func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id, Cart: cart.Load(ctx, m.stores(id))}
	m.sessions[id] = s
	return s
}
