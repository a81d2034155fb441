package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/session"
)

type CheckoutHandler struct {
	Sessions *session.Manager
	Checkout *checkout.Service
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.submit)
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	s := sessionFor(h.Sessions, w, r)
	if !s.BeginCheckout() {
		writeErr(w, http.StatusConflict, "submission in progress", "an order submission is already pending")
		return
	}
	defer s.EndCheckout()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	placed, err := h.Checkout.Submit(ctx, s.Cart, form)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeErr(w, http.StatusBadRequest, "cart is empty", "")
		case errors.Is(err, checkout.ErrInvalidForm):
			writeErr(w, http.StatusBadRequest, "missing required fields", err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "failed to place order", "order submission failed, please try again")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"orderId":     placed.ID,
		"totalAmount": placed.TotalAmount,
		"message":     "order placed successfully",
	})
}
