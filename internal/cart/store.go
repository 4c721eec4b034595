// Package cart holds the shopping cart of one storefront session.
package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"

	catalog "github.com/tair/ministore/internal/catalog/domain"
	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/apperror"
	"github.com/tair/ministore/pkg/logger"
)

// Store is the cart state container. Items keep insertion order and there is
// at most one item per product id, always with quantity >= 1.
type Store struct {
	adapter *storage.Adapter

	mu    sync.RWMutex
	items []domain.Item
}

// NewStore loads the persisted cart, or starts empty.
func NewStore(ctx context.Context, adapter *storage.Adapter) *Store {
	s := &Store{adapter: adapter}
	if stored, ok := storage.Load[[]domain.Item](ctx, adapter, storage.KeyCart); ok {
		s.items = normalize(stored)
	}
	return s
}

// normalize merges duplicate product ids, drops non-positive quantities and
// out-of-range prices, and clamps to the cart bounds.
func normalize(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.Product.ID == "" || checkPrice(it.Product) != nil {
			continue
		}
		it.Quantity = min(it.Quantity, domain.MaxQuantity)
		if i := indexOf(out, it.Product.ID); i >= 0 {
			out[i].Quantity = min(out[i].Quantity+it.Quantity, domain.MaxQuantity)
			continue
		}
		if len(out) == domain.MaxLines {
			continue
		}
		out = append(out, it)
	}
	return out
}

func checkPrice(p catalog.Product) error {
	if p.Price <= 0 || p.Price > catalog.MaxPrice {
		return apperror.Validation("price", "product price is out of range")
	}
	return nil
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return apperror.Validation("quantity", "quantity must be at least 1")
	}
	if quantity > domain.MaxQuantity {
		return apperror.Validation("quantity", fmt.Sprintf("quantity cannot exceed %d", domain.MaxQuantity))
	}
	return nil
}

func indexOf(items []domain.Item, productID string) int {
	return slices.IndexFunc(items, func(it domain.Item) bool { return it.Product.ID == productID })
}

func cloneItems(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	for i, it := range items {
		out[i] = domain.Item{Product: it.Product.Clone(), Quantity: it.Quantity}
	}
	return out
}

// Items returns a copy of the cart lines.
func (s *Store) Items() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Len is the number of distinct products in the cart.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Quantity returns the quantity held for productID, 0 if absent.
func (s *Store) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.items, productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalItems(s.items)
}

// TotalPrice is the sum of quantity * price over all lines.
func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalPrice(s.items)
}

// AddToCart adds quantity of product, merging into an existing line.
// Stock is not checked. A line never holds more than MaxQuantity and the cart
// never holds more than MaxLines products.
func (s *Store) AddToCart(ctx context.Context, product catalog.Product, quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	if product.ID == "" {
		return apperror.Validation("product", "product id is required")
	}
	if err := checkPrice(product); err != nil {
		return err
	}

	return s.mutate(ctx, func(items []domain.Item) ([]domain.Item, error) {
		if i := indexOf(items, product.ID); i >= 0 {
			if items[i].Quantity > domain.MaxQuantity-quantity {
				return nil, apperror.Validation("quantity", fmt.Sprintf("quantity cannot exceed %d", domain.MaxQuantity))
			}
			items[i].Quantity += quantity
			return items, nil
		}
		if len(items) >= domain.MaxLines {
			return nil, apperror.Validation("cart", fmt.Sprintf("cart cannot hold more than %d products", domain.MaxLines))
		}
		return append(items, domain.Item{Product: product.Clone(), Quantity: quantity}), nil
	})
}

// RemoveFromCart deletes the line for productID. Unknown ids are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.mutate(ctx, func(items []domain.Item) ([]domain.Item, error) {
		return slices.DeleteFunc(items, func(it domain.Item) bool { return it.Product.ID == productID }), nil
	})
}

// UpdateQuantity sets the quantity of a line; quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, productID)
	}
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	return s.mutate(ctx, func(items []domain.Item) ([]domain.Item, error) {
		if i := indexOf(items, productID); i >= 0 {
			items[i].Quantity = quantity
		}
		return items, nil
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func([]domain.Item) ([]domain.Item, error) {
		return []domain.Item{}, nil
	})
}

// mutate applies fn to a copy of the items, persists the result and only then
// makes it current. An error from fn changes nothing.
func (s *Store) mutate(ctx context.Context, fn func([]domain.Item) ([]domain.Item, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneItems(s.items))
	if err != nil {
		return err
	}
	if next == nil {
		next = []domain.Item{}
	}
	if err := s.adapter.Save(ctx, storage.KeyCart, next); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.items = next

	logger.Debug(ctx).
		Int("lines", len(next)).
		Int("total_items", domain.TotalItems(next)).
		Msg("Cart updated")
	return nil
}
