// Package catalog holds the mock product feed and the lookups served over it.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates no product has the requested ID.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a single catalog item.
type Product struct {
	ID            int     `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Image         string  `json:"image" yaml:"image"`
	OriginalPrice int     `json:"originalPrice" yaml:"original_price"`
	SalePrice     int     `json:"salePrice" yaml:"sale_price"`
	Rating        float64 `json:"rating" yaml:"rating"`
	ReviewCount   int     `json:"reviewCount" yaml:"review_count"`
	Description   string  `json:"description" yaml:"description"`
}

// Catalog is an immutable, in-memory product feed. Safe for concurrent use.
type Catalog struct {
	products []Product
}

// New creates a Catalog over products. The slice is copied.
func New(products []Product) *Catalog {
	return &Catalog{products: append([]Product(nil), products...)}
}

type feedFile struct {
	Products []Product `yaml:"products"`
}

// Load reads a YAML product feed named name from fsys.
// Unknown fields and duplicate IDs are rejected.
func Load(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", name, err)
	}

	var feed feedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", name, err)
	}

	seen := make(map[int]bool, len(feed.Products))
	for _, p := range feed.Products {
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog: %s: duplicate product id %d", name, p.ID)
		}
		seen[p.ID] = true
	}
	return New(feed.Products), nil
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Products returns products whose name contains search, case-insensitively.
// An empty search returns every product.
func (c *Catalog) Products(ctx context.Context, search string) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(search)
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Product returns the product with the given ID.
func (c *Catalog) Product(ctx context.Context, id int) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}
