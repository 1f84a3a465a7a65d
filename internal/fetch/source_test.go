package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smileynet/shelf/internal/api"
	"github.com/smileynet/shelf/internal/catalog"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat := catalog.New([]catalog.Product{
		{ID: 1, Name: "Wireless Mouse", SalePrice: 399},
		{ID: 3, Name: "USB-C Fast Charging Cable", SalePrice: 99},
	})
	srv := httptest.NewServer(api.New(cat, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSource_Products(t *testing.T) {
	srv := newAPIServer(t)
	src := NewHTTPSource(srv.URL+"/", srv.Client())

	all, err := src.Products(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := src.Products(context.Background(), "usb c")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = src.Products(context.Background(), "usb-c")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
}

func TestHTTPSource_Product(t *testing.T) {
	srv := newAPIServer(t)
	src := NewHTTPSource(srv.URL, srv.Client())

	p, err := src.Product(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 99, p.SalePrice)

	_, err = src.Product(context.Background(), 42)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestHTTPSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to fetch products"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPSource(srv.URL, nil).Products(context.Background(), "")
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "Failed to fetch products", se.Message)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPSource(srv.URL, nil).Products(context.Background(), "")
	assert.ErrorContains(t, err, "decoding")
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource(url, nil).Products(context.Background(), "")
	assert.Error(t, err)
}
