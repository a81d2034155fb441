package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/pocketbase"
)

func ordersRouter(t *testing.T, backend http.HandlerFunc, rdb *redis.Client) http.Handler {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	svc := orders.NewService(pocketbase.New(srv.URL), "orders", nil, "storefront-api")
	r := NewRouter()
	(&OrdersHandler{Orders: svc, Redis: rdb}).Register(r)
	return r
}

func TestCreateOrder_MissingFields(t *testing.T) {
	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("store must not be called for invalid orders")
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerEmail":"ana@example.com"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missing required fields", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestCreateOrder_Success(t *testing.T) {
	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = "o1"
		_ = json.NewEncoder(w).Encode(body)
	}, nil)

	payload := `{
		"customerName": "Ana",
		"customerEmail": "ana@example.com",
		"customerPhone": "555-0101",
		"items": [{"id":"p1","name":"Mug","price":7.99,"quantity":2}],
		"totalAmount": 15.98,
		"shippingAddress": {"name":"Ana","address":"Calle 1","city":"Madrid","zipCode":"28001","phone":"555-0101"}
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "o1", body["orderId"])
}

func TestGetOrder_NotFound(t *testing.T) {
	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"message":"not found"}`))
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "order not found", body["error"])
}

func TestListOrders_ByEmail_EmptyIsOK(t *testing.T) {
	var gotFilter string
	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		_, _ = w.Write([]byte(`{"page":1,"perPage":50,"totalItems":0,"totalPages":0,"items":[]}`))
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?email=nobody@example.com", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `customerEmail="nobody@example.com"`, gotFilter)
	var body struct {
		Orders []orders.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Orders)
	assert.Empty(t, body.Orders, "zero matches is an empty list, not an error")
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("store must not be called for an invalid status")
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/orders/o1", strings.NewReader(`{"status":"refunded"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatus_MissingStatus(t *testing.T) {
	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("store must not be called")
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/o1", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderStatus_ServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set("order_status:o1", `{"status":"shipped"}`))

	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("cached status must not hit the store")
	}, rdb)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"shipped"}`, rec.Body.String())
}

func TestOrderStatus_CacheMissFallsBackAndFills(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	router := ordersRouter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"o1","customerEmail":"ana@example.com","status":"processing"}`))
	}, rdb)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"processing"}`, rec.Body.String())

	cached, err := mr.Get("order_status:o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"processing"}`, cached)
}
