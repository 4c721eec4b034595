// Package theme persists the storefront's light/dark preference.
package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/apperror"
)

// Mode is the stored preference.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "dark" and "light" only.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Light, Dark:
		return Mode(s), nil
	}
	return "", apperror.Validation("mode", fmt.Sprintf("unknown theme %q", s))
}

// Store holds the current mode. Light is the default.
type Store struct {
	adapter *storage.Adapter

	mu   sync.RWMutex
	mode Mode
}

// NewStore restores the saved mode. Anything other than "dark" reads as light.
func NewStore(ctx context.Context, adapter *storage.Adapter) *Store {
	s := &Store{adapter: adapter, mode: Light}
	if saved, ok := storage.Load[Mode](ctx, adapter, storage.KeyTheme); ok && saved == Dark {
		s.mode = Dark
	}
	return s
}

// Mode returns the current mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// IsDark reports whether dark mode is on.
func (s *Store) IsDark() bool {
	return s.Mode() == Dark
}

// Toggle flips between light and dark.
func (s *Store) Toggle(ctx context.Context) (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Dark
	if s.mode == Dark {
		next = Light
	}
	return next, s.setLocked(ctx, next)
}

// Set stores mode.
func (s *Store) Set(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, mode)
}

func (s *Store) setLocked(ctx context.Context, mode Mode) error {
	if err := s.adapter.Save(ctx, storage.KeyTheme, mode); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	s.mode = mode
	return nil
}
