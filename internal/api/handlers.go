package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smileynet/shelf/internal/catalog"
)

// response is the JSON envelope for every product endpoint.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleProducts handles GET /products?search=.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.delay(ctx) {
		return
	}

	search := r.URL.Query().Get("search")
	products, err := s.catalog.Products(ctx, search)
	if err != nil {
		s.logger.ErrorContext(ctx, "listing products failed",
			"request_id", middleware.GetReqID(ctx),
			"search", search,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	total := len(products)
	writeJSON(w, http.StatusOK, response{Success: true, Data: products, Total: &total})
}

// handleProduct handles GET /products/{id}.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.delay(ctx) {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := s.catalog.Product(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		s.logger.ErrorContext(ctx, "fetching product failed",
			"request_id", middleware.GetReqID(ctx),
			"id", id,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Data: product})
}

func writeJSON(w http.ResponseWriter, status int, payload response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, response{Success: false, Error: message})
}
