package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The store's number fields expect JSON numbers, not quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true
}

var ErrNotFound = errors.New("record not found")

// APIError is the decoded PocketBase error body for a non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("pocketbase: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("pocketbase: status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Collection(name string) *Collection {
	return &Collection{c: c, name: name}
}

// FileURL builds the retrieval URL for a file field value.
func (c *Client) FileURL(collection, recordID, filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/files/%s/%s/%s", c.baseURL, collection, recordID, filename)
}

type Collection struct {
	c    *Client
	name string
}

type ListOptions struct {
	Page    int
	PerPage int
	Sort    string // e.g. "name", "-created"
	Filter  string // PocketBase filter expression
}

type ListResult struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

func (col *Collection) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 50
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("perPage", strconv.Itoa(opts.PerPage))
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	u := fmt.Sprintf("%s/api/collections/%s/records?%s", col.c.baseURL, col.name, q.Encode())

	var res ListResult
	if err := col.c.do(ctx, http.MethodGet, u, nil, &res); err != nil {
		return nil, fmt.Errorf("list %s: %w", col.name, err)
	}
	return &res, nil
}

func (col *Collection) Get(ctx context.Context, id string, out any) error {
	u := fmt.Sprintf("%s/api/collections/%s/records/%s", col.c.baseURL, col.name, url.PathEscape(id))
	if err := col.c.do(ctx, http.MethodGet, u, nil, out); err != nil {
		return fmt.Errorf("get %s/%s: %w", col.name, id, err)
	}
	return nil
}

func (col *Collection) Create(ctx context.Context, body, out any) error {
	u := fmt.Sprintf("%s/api/collections/%s/records", col.c.baseURL, col.name)
	if err := col.c.do(ctx, http.MethodPost, u, body, out); err != nil {
		return fmt.Errorf("create %s: %w", col.name, err)
	}
	return nil
}

func (col *Collection) Update(ctx context.Context, id string, body, out any) error {
	u := fmt.Sprintf("%s/api/collections/%s/records/%s", col.c.baseURL, col.name, url.PathEscape(id))
	if err := col.c.do(ctx, http.MethodPatch, u, body, out); err != nil {
		return fmt.Errorf("update %s/%s: %w", col.name, id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// DecodeItems decodes every raw item of a list result into T.
func DecodeItems[T any](res *ListResult) ([]T, error) {
	out := make([]T, 0, len(res.Items))
	for _, raw := range res.Items {
		var t T
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}
