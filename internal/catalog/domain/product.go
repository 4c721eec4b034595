package domain

import (
	"slices"
	"strings"

	"github.com/tair/ministore/pkg/apperror"
)

// Product represents a catalog entry. Prices are whole currency units.
type Product struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// HasTag reports whether the product carries tag.
func (p Product) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// InStock reports whether the product can be bought. Products without a
// stock figure are always available.
func (p Product) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	c := p
	c.Tags = slices.Clone(p.Tags)
	if p.Stock != nil {
		s := *p.Stock
		c.Stock = &s
	}
	return c
}

// MaxPrice bounds a unit price so cart totals stay within int64.
const MaxPrice int64 = 1_000_000_000_000

// Validate checks the catalog invariants.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return apperror.Validation("id", "product id is required")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return apperror.Validation("slug", "slug is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.Validation("name", "name is required")
	}
	if p.Price <= 0 {
		return apperror.Validation("price", "price must be greater than 0")
	}
	if p.Price > MaxPrice {
		return apperror.Validation("price", "price is too large")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return apperror.Validation("stock", "stock cannot be negative")
	}
	return nil
}

// CloneAll copies a product list.
func CloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// IntPtr is a small helper for optional stock values.
func IntPtr(v int) *int {
	return &v
}
