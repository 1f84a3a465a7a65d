package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/smileynet/shelf/internal/catalog"
)

// Source is where product data comes from.
type Source interface {
	Products(ctx context.Context, search string) ([]catalog.Product, error)
	Product(ctx context.Context, id int) (catalog.Product, error)
}

// Compile-time check: the in-process catalog is a Source.
var _ Source = (*catalog.Catalog)(nil)

// StatusError reports an unexpected HTTP status from the product API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("fetch: unexpected status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("fetch: unexpected status %d", e.Status)
}

// HTTPSource reads products from the mock product API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for the API at baseURL. A nil client
// uses http.DefaultClient.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Total   *int   `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Products calls GET /products?search=.
func (s *HTTPSource) Products(ctx context.Context, search string) ([]catalog.Product, error) {
	u := s.baseURL + "/products"
	if search != "" {
		u += "?" + url.Values{"search": {search}}.Encode()
	}
	var env envelope[[]catalog.Product]
	if err := s.get(ctx, u, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Product calls GET /products/{id}. A 404 maps to catalog.ErrNotFound.
func (s *HTTPSource) Product(ctx context.Context, id int) (catalog.Product, error) {
	var env envelope[catalog.Product]
	if err := s.get(ctx, s.baseURL+"/products/"+strconv.Itoa(id), &env); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return catalog.Product{}, fmt.Errorf("%w: %d", catalog.ErrNotFound, id)
		}
		return catalog.Product{}, err
	}
	return env.Data, nil
}

func (s *HTTPSource) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("fetch: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope[json.RawMessage]
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return &StatusError{Status: resp.StatusCode, Message: env.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fetch: decoding %s: %w", u, err)
	}
	return nil
}
