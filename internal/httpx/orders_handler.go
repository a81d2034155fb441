package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

type OrdersHandler struct {
	Orders *orders.Service
	Redis  *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.create)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.status)
	r.Patch("/orders/{id}", h.updateStatus)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		result []orders.Order
		err    error
	)
	if email := r.URL.Query().Get("email"); email != "" {
		result, err = h.Orders.GetByEmail(ctx, email)
	} else {
		result, err = h.Orders.List(ctx)
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to load orders", err.Error())
		return
	}
	if result == nil {
		result = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": result})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var o orders.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Orders.Create(ctx, o)
	if err != nil {
		if errors.Is(err, orders.ErrInvalid) {
			writeErr(w, http.StatusBadRequest, "missing required fields", err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to create order", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"orderId": created.ID,
		"message": "order created",
	})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "order not found", "")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to load order", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

// status serves the order status from the Redis cache kept by the tracker,
// falling back to the record store on a miss.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "order not found", "")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to load order", err.Error())
		return
	}
	body, _ := json.Marshal(map[string]any{"status": o.Status})
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if req.Status == "" {
		writeErr(w, http.StatusBadRequest, "missing required fields", "status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalid):
			writeErr(w, http.StatusBadRequest, "invalid status", err.Error())
		case errors.Is(err, orders.ErrNotFound):
			writeErr(w, http.StatusNotFound, "order not found", "")
		default:
			writeErr(w, http.StatusInternalServerError, "failed to update order", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   o,
		"message": "order status updated",
	})
}
