// Package catalog holds the product catalog. The list is seeded once at
// start-up; in the admin variant a persisted override replaces the seed and
// admin edits are written back.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tair/ministore/internal/catalog/domain"
	"github.com/tair/ministore/internal/catalog/search"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/apperror"
	"github.com/tair/ministore/pkg/logger"
)

const (
	defaultImageURL    = "https://via.placeholder.com/400x400?text=Product"
	defaultDescription = "No description yet."
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrReadOnly        = errors.New("catalog is read-only outside the admin variant")
)

// ProductForm is the admin create/edit input. An empty ID creates a product.
type ProductForm struct {
	ID          string   `json:"id,omitempty"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// Store is the catalog state container.
type Store struct {
	adapter      *storage.Adapter
	adminVariant bool

	mu       sync.RWMutex
	products []domain.Product
	version  uint64
}

// NewStore seeds the catalog. With adminVariant set, a persisted override
// list (if any) replaces seed.
func NewStore(ctx context.Context, adapter *storage.Adapter, seed []domain.Product, adminVariant bool) *Store {
	s := &Store{
		adapter:      adapter,
		adminVariant: adminVariant,
		products:     domain.CloneAll(seed),
		version:      1,
	}

	if adminVariant {
		if stored, ok := storage.Load[[]domain.Product](ctx, adapter, storage.KeyProductOverrides); ok {
			s.products = validOnly(ctx, stored)
		}
	}

	logger.Info(ctx).
		Int("products", len(s.products)).
		Bool("admin_variant", adminVariant).
		Msg("Catalog loaded")
	return s
}

func validOnly(ctx context.Context, products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			logger.Warn(ctx).Err(err).Str("product_id", p.ID).Msg("Dropping invalid stored product")
			continue
		}
		out = append(out, p)
	}
	return out
}

// AdminVariant reports whether admin edits are enabled.
func (s *Store) AdminVariant() bool {
	return s.adminVariant
}

// List returns a copy of the catalog in catalog order.
func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAll(s.products)
}

// Snapshot returns the catalog together with its version, for memoized queries.
func (s *Store) Snapshot() ([]domain.Product, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAll(s.products), s.version
}

func (s *Store) FindBySlug(slug string) (domain.Product, bool) {
	return s.find(func(p domain.Product) bool { return p.Slug == slug })
}

func (s *Store) FindByID(id string) (domain.Product, bool) {
	return s.find(func(p domain.Product) bool { return p.ID == id })
}

func (s *Store) find(match func(domain.Product) bool) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.products, match)
	if i < 0 {
		return domain.Product{}, false
	}
	return s.products[i].Clone(), true
}

// Tags lists the distinct tags of the catalog, sorted.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Tags(s.products)
}

// AdminSearch is the admin list filter: a case-insensitive substring of
// name, slug or description.
func (s *Store) AdminSearch(text string) []domain.Product {
	q := strings.ToLower(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if q == "" {
		return domain.CloneAll(s.products)
	}
	var out []domain.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Slug), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Upsert creates or replaces a product from the admin form.
func (s *Store) Upsert(ctx context.Context, form ProductForm) (domain.Product, error) {
	if !s.adminVariant {
		return domain.Product{}, ErrReadOnly
	}

	p, err := productFromForm(form)
	if err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.products {
		if other.ID != p.ID && other.Slug == p.Slug {
			return domain.Product{}, apperror.Validation("slug", "slug is already used by another product")
		}
	}

	next := domain.CloneAll(s.products)
	if form.ID != "" {
		i := slices.IndexFunc(next, func(q domain.Product) bool { return q.ID == form.ID })
		if i < 0 {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, form.ID)
		}
		next[i] = p
	} else {
		next = append(next, p)
	}

	if err := s.commit(ctx, next); err != nil {
		return domain.Product{}, err
	}

	logger.Info(ctx).Str("product_id", p.ID).Str("slug", p.Slug).Msg("Product saved")
	return p.Clone(), nil
}

// Delete removes a product.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.adminVariant {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	next := domain.CloneAll(s.products)
	next = slices.Delete(next, i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	logger.Info(ctx).Str("product_id", id).Msg("Product deleted")
	return nil
}

// DecrementStock lowers the stock of products that track it, clamping at
// zero. Products without a stock count and unknown ids are skipped. The
// change is persisted only in the admin variant.
func (s *Store) DecrementStock(ctx context.Context, quantities map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.CloneAll(s.products)
	changed := 0
	for i := range next {
		qty, ok := quantities[next[i].ID]
		if !ok || qty <= 0 || next[i].Stock == nil {
			continue
		}
		*next[i].Stock = max(*next[i].Stock-qty, 0)
		changed++
	}
	if changed == 0 {
		return nil
	}

	if s.adminVariant {
		if err := s.commit(ctx, next); err != nil {
			return err
		}
	} else {
		s.products = next
		s.version++
	}

	logger.Info(ctx).Int("products", changed).Msg("Stock decremented")
	return nil
}

// commit persists next and then makes it current. Caller holds s.mu.
func (s *Store) commit(ctx context.Context, next []domain.Product) error {
	if err := s.adapter.Save(ctx, storage.KeyProductOverrides, next); err != nil {
		return fmt.Errorf("failed to persist catalog: %w", err)
	}
	s.products = next
	s.version++
	return nil
}

func productFromForm(form ProductForm) (domain.Product, error) {
	p := domain.Product{
		ID:          form.ID,
		Slug:        strings.TrimSpace(form.Slug),
		Name:        strings.TrimSpace(form.Name),
		Price:       form.Price,
		ImageURL:    strings.TrimSpace(form.ImageURL),
		Description: strings.TrimSpace(form.Description),
		Tags:        cleanTags(form.Tags),
	}
	if form.Stock != nil {
		p.Stock = domain.IntPtr(*form.Stock)
	}

	if p.Slug == "" || p.Name == "" {
		return domain.Product{}, apperror.Validation("slug", "slug and name are required")
	}
	if p.Price <= 0 {
		return domain.Product{}, apperror.Validation("price", "price must be greater than 0")
	}

	if p.ID == "" {
		p.ID = "p-" + uuid.NewString()
	}
	if p.ImageURL == "" {
		p.ImageURL = defaultImageURL
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	return p, p.Validate()
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
