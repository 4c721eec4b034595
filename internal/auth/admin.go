package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/logger"
)

// PlaceholderAdminPassword unlocks the admin gate. It is a demo placeholder,
// not a credential: anyone reading this source can unlock catalog management.
const PlaceholderAdminPassword = "admin123"

var (
	// ErrWrongAdminPassword is returned by Unlock on a mismatch.
	ErrWrongAdminPassword = errors.New("wrong admin password")
	// ErrAdminLocked is returned to callers that need the gate open.
	ErrAdminLocked = errors.New("admin access required")
)

// AdminGate is a boolean flag, independent of the signed-in user, that opens
// catalog management.
type AdminGate struct {
	adapter  *storage.Adapter
	password string

	mu   sync.RWMutex
	open bool
}

// NewAdminGate restores the persisted flag.
func NewAdminGate(ctx context.Context, adapter *storage.Adapter) *AdminGate {
	g := &AdminGate{adapter: adapter, password: PlaceholderAdminPassword}
	if open, ok := storage.Load[bool](ctx, adapter, storage.KeyAdminFlag); ok {
		g.open = open
	}
	return g
}

// IsAdmin reports whether the gate is open.
func (g *AdminGate) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.open
}

// Require returns ErrAdminLocked unless the gate is open.
func (g *AdminGate) Require() error {
	if !g.IsAdmin() {
		return ErrAdminLocked
	}
	return nil
}

// Unlock opens the gate when password matches.
func (g *AdminGate) Unlock(ctx context.Context, password string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		logger.Warn(ctx).Msg("Rejected admin unlock attempt")
		return ErrWrongAdminPassword
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.adapter.Save(ctx, storage.KeyAdminFlag, true); err != nil {
		return fmt.Errorf("failed to persist admin flag: %w", err)
	}
	g.open = true
	return nil
}

// Lock closes the gate and drops the persisted flag.
func (g *AdminGate) Lock(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.adapter.Remove(ctx, storage.KeyAdminFlag); err != nil {
		return fmt.Errorf("failed to remove admin flag: %w", err)
	}
	g.open = false
	return nil
}
