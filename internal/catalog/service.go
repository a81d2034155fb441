package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-storefront/internal/pocketbase"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

// SortOption values match the storefront's sort selector.
type SortOption string

const (
	SortNameAsc   SortOption = "name"
	SortNameDesc  SortOption = "name-desc"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
)

func (s SortOption) expr() string {
	switch s {
	case SortNameAsc:
		return "name"
	case SortNameDesc:
		return "-name"
	case SortPriceAsc:
		return "price"
	case SortPriceDesc:
		return "-price"
	default:
		return "created"
	}
}

type Query struct {
	Search   string
	Category string
	Sort     SortOption
	Page     int
	PerPage  int
}

var filterQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteFilterValue(s string) string {
	return `"` + filterQuoter.Replace(s) + `"`
}

func (q Query) filterExpr() string {
	var filter string
	if q.Search != "" {
		v := quoteFilterValue(q.Search)
		filter = fmt.Sprintf("name~%s || description~%s", v, v)
	}
	if q.Category != "" {
		cond := "category=" + quoteFilterValue(q.Category)
		if filter != "" {
			filter = "(" + filter + ") && " + cond
		} else {
			filter = cond
		}
	}
	return filter
}

func (q Query) signature() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", q.Search, q.Category, q.Sort, q.Page, q.PerPage)
}

type Service struct {
	col        *pocketbase.Collection
	client     *pocketbase.Client
	collection string
	rdb        *redis.Client // optional list cache
}

func NewService(client *pocketbase.Client, collection string, rdb *redis.Client) *Service {
	return &Service{
		col:        client.Collection(collection),
		client:     client,
		collection: collection,
		rdb:        rdb,
	}
}

// List fetches one catalog page. Results are cached briefly in Redis;
// products are written only by the external store, so TTL expiry is the
// only invalidation needed.
func (s *Service) List(ctx context.Context, q Query) ([]Product, error) {
	var cacheKey string
	if s.rdb != nil {
		cacheKey = fmt.Sprintf(redisx.KeyCatalogList, q.signature())
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Product
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	res, err := s.col.List(ctx, pocketbase.ListOptions{
		Page:    q.Page,
		PerPage: q.PerPage,
		Sort:    q.Sort.expr(),
		Filter:  q.filterExpr(),
	})
	if err != nil {
		return nil, err
	}
	products, err := pocketbase.DecodeItems[Product](res)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(products); err == nil {
			_ = s.rdb.Set(ctx, cacheKey, raw, redisx.TTLCatalogList).Err()
		}
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	if err := s.col.Get(ctx, id, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Categories returns the distinct categories of the first catalog page,
// in first-seen order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.List(ctx, Query{PerPage: 200})
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out, nil
}

func (s *Service) ImageURL(p Product) string {
	return s.client.FileURL(s.collection, p.ID, p.Image)
}
