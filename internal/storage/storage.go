// Package storage is the persistence adapter the storefront stores write their
// snapshots through. A Store is a raw key-value backend; Adapter layers JSON
// snapshotting and the "malformed means absent" rule on top of it.
package storage

import (
	"context"
	"errors"
)

// Well-known snapshot keys, one per persisted store.
const (
	KeyCart             = "cart-store"
	KeyAuthUser         = "auth-user"
	KeyAdminFlag        = "admin-flag"
	KeyTheme            = "theme-preference"
	KeyProductOverrides = "admin-product-overrides"
)

// ErrNotFound is returned by a Store when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable key-value area.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the backend if it supports health checks.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
