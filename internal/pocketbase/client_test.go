package pocketbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_QueryParams(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(ListResult{
			Page: 2, PerPage: 10, TotalItems: 21, TotalPages: 3,
			Items: []json.RawMessage{json.RawMessage(`{"id":"p1"}`)},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Collection("products").List(context.Background(), ListOptions{
		Page:    2,
		PerPage: 10,
		Sort:    "-price",
		Filter:  `category="books"`,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/collections/products/records", gotPath)
	assert.Equal(t, "2", gotQuery["page"])
	assert.Equal(t, "10", gotQuery["perPage"])
	assert.Equal(t, "-price", gotQuery["sort"])
	assert.Equal(t, `category="books"`, gotQuery["filter"])
	assert.Equal(t, 21, res.TotalItems)
	assert.Len(t, res.Items, 1)
}

func TestList_Defaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("perPage"))
		assert.False(t, r.URL.Query().Has("sort"))
		assert.False(t, r.URL.Query().Has("filter"))
		_ = json.NewEncoder(w).Encode(ListResult{Page: 1, PerPage: 50})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Collection("products").List(context.Background(), ListOptions{})
	require.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"message":"The requested resource wasn't found."}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New(srv.URL).Collection("orders").Get(context.Background(), "missing", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_PostsBodyAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana", body["name"])
		_, _ = w.Write([]byte(`{"id":"rec1","name":"ana"}`))
	}))
	defer srv.Close()

	var out struct {
		ID string `json:"id"`
	}
	err := New(srv.URL).Collection("orders").Create(context.Background(), map[string]string{"name": "ana"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "rec1", out.ID)
}

func TestUpdate_Patches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/collections/orders/records/rec1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"rec1","status":"shipped"}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New(srv.URL).Collection("orders").Update(context.Background(), "rec1", map[string]string{"status": "shipped"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "shipped", out["status"])
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"message":"Failed to create record."}`))
	}))
	defer srv.Close()

	err := New(srv.URL).Collection("orders").Create(context.Background(), map[string]string{}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Failed to create record")
}

func TestDecodeItems(t *testing.T) {
	res := &ListResult{Items: []json.RawMessage{
		json.RawMessage(`{"id":"a"}`),
		json.RawMessage(`{"id":"b"}`),
	}}
	type rec struct {
		ID string `json:"id"`
	}
	items, err := DecodeItems[rec](res)
	require.NoError(t, err)
	assert.Equal(t, []rec{{ID: "a"}, {ID: "b"}}, items)
}

func TestFileURL(t *testing.T) {
	c := New("http://store.local")
	assert.Equal(t,
		"http://store.local/api/files/products/p1/photo.png",
		c.FileURL("products", "p1", "photo.png"))
	assert.Empty(t, c.FileURL("products", "p1", ""))
}
