package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/pocketbase"
)

type ProductsHandler struct {
	Catalog *catalog.Service
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/categories", h.categories)
	r.Get("/products/{id}", h.get)
}

type productResp struct {
	catalog.Product
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h *ProductsHandler) toResp(ps []catalog.Product) []productResp {
	out := make([]productResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, productResp{Product: p, ImageURL: h.Catalog.ImageURL(p)})
	}
	return out
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := catalog.Query{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Sort:     catalog.SortOption(r.URL.Query().Get("sort")),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("perPage")); err == nil {
		q.PerPage = v
	}

	products, err := h.Catalog.List(ctx, q)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to load products", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": h.toResp(products)})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, pocketbase.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found", "")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to load product", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, productResp{Product: p, ImageURL: h.Catalog.ImageURL(p)})
}

func (h *ProductsHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Catalog.Categories(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to load categories", err.Error())
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}
