package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/pocketbase"
	"github.com/ariefcatur/go-storefront/internal/session"
)

const sessionCookie = "sid"

type CartHandler struct {
	Sessions *session.Manager
	Catalog  *catalog.Service
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.get)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{id}", h.updateItem)
	r.Delete("/cart/items/{id}", h.removeItem)
	r.Delete("/cart", h.clear)
	r.Post("/cart/completion/reset", h.resetCompletion)
}

// sessionFor resolves the shopper's session from the sid cookie, minting
// one on first contact.
func sessionFor(sessions *session.Manager, w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return sessions.Get(r.Context(), c.Value)
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Get(r.Context(), id)
}

type cartView struct {
	Items              []cart.Item     `json:"items"`
	Total              decimal.Decimal `json:"total"`
	ItemCount          int             `json:"itemCount"`
	JustCompletedOrder bool            `json:"justCompletedOrder"`
}

func viewOf(c *cart.Cart) cartView {
	items := c.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{
		Items:              items,
		Total:              c.Total(),
		ItemCount:          c.ItemCount(),
		JustCompletedOrder: c.JustCompletedOrder(),
	}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "missing required fields", "product_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, pocketbase.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found", "")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to load product", err.Error())
		return
	}

	s := sessionFor(h.Sessions, w, r)
	s.Cart.Add(ctx, p)
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":    viewOf(s.Cart),
		"message": fmt.Sprintf("%s added to cart", p.Name),
	})
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	s := sessionFor(h.Sessions, w, r)
	s.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	s.Cart.Remove(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	s.Cart.Clear(r.Context())
	// A shopper-initiated clear is not an order completion.
	s.Cart.ResetOrderCompletion()
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) resetCompletion(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(h.Sessions, w, r)
	s.Cart.ResetOrderCompletion()
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}
