package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tair/ministore/pkg/logger"
)

// Adapter snapshots values as JSON into a Store.
type Adapter struct {
	store Store
}

// NewAdapter creates a new snapshot adapter over store.
func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// Store returns the underlying backend.
func (a *Adapter) Store() Store {
	return a.store
}

// Load decodes the snapshot under key into dst and reports whether one was found.
// Missing, unreadable and malformed snapshots all yield false; the latter two
// are logged. dst is only meaningful when Load returns true.
func (a *Adapter) Load(ctx context.Context, key string, dst any) bool {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		logger.Error(ctx).Err(err).Str("key", key).Msg("Failed to read snapshot")
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key).Msg("Discarding malformed snapshot")
		return false
	}
	return true
}

// Save writes v as the snapshot under key.
func (a *Adapter) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", key, err)
	}

	if err := a.store.Set(ctx, key, raw); err != nil {
		logger.Error(ctx).Err(err).Str("key", key).Msg("Failed to write snapshot")
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	return nil
}

// Remove deletes the snapshot under key. Removing an absent key is not an error.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	err := a.store.Delete(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		logger.Error(ctx).Err(err).Str("key", key).Msg("Failed to remove snapshot")
		return fmt.Errorf("remove snapshot %q: %w", key, err)
	}
	return nil
}

// Load is the typed form of Adapter.Load.
func Load[T any](ctx context.Context, a *Adapter, key string) (T, bool) {
	var v T
	if !a.Load(ctx, key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}
