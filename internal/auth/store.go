// Package auth implements the storefront's local sign-in model and the admin gate.
//
// There are no accounts: any username and password of sufficient length signs in,
// and login and registration behave identically.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tair/ministore/internal/auth/domain"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/apperror"
	"github.com/tair/ministore/pkg/logger"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// Store holds the current user, if any, and the last authentication error.
type Store struct {
	adapter *storage.Adapter

	mu      sync.RWMutex
	user    *domain.User
	lastErr string
}

// NewStore restores the persisted user. A stored record without a username is ignored.
func NewStore(ctx context.Context, adapter *storage.Adapter) *Store {
	s := &Store{adapter: adapter}
	if u, ok := storage.Load[domain.User](ctx, adapter, storage.KeyAuthUser); ok && strings.TrimSpace(u.Username) != "" {
		s.user = &u
	}
	return s
}

// User returns a copy of the current user, or nil when anonymous.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Error returns the current error message, empty when there is none.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ClearError resets the current error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// Login signs in. Both trimmed username and password need at least three
// characters; on failure the state is left as it was and the error recorded.
func (s *Store) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return s.signIn(ctx, username, password)
}

// Register is the same as Login. There is no uniqueness check.
func (s *Store) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.signIn(ctx, username, password)
}

func (s *Store) signIn(ctx context.Context, username, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = ""
	name := strings.TrimSpace(username)
	if utf8.RuneCountInString(name) < domain.MinCredentialLength ||
		utf8.RuneCountInString(strings.TrimSpace(password)) < domain.MinCredentialLength {
		s.lastErr = domain.ErrMsgCredentialsTooShort
		return nil, apperror.Validation("credentials", domain.ErrMsgCredentialsTooShort)
	}

	u := domain.User{Username: name, DisplayName: name}
	if err := s.adapter.Save(ctx, storage.KeyAuthUser, u); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}
	s.user = &u

	logger.Info(ctx).Str("username", name).Msg("User signed in")
	out := u
	return &out, nil
}

// Logout clears the current user and its persisted record.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.adapter.Remove(ctx, storage.KeyAuthUser); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	if s.user != nil {
		logger.Info(ctx).Str("username", s.user.Username).Msg("User signed out")
	}
	s.user = nil
	return nil
}

// UpdateProfile merges update into the current user and persists it.
// It returns ErrNotAuthenticated and changes nothing when anonymous.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, ErrNotAuthenticated
	}

	next := update.Apply(*s.user)
	if err := s.adapter.Save(ctx, storage.KeyAuthUser, next); err != nil {
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}
	s.user = &next

	out := next
	return &out, nil
}
