// Package session composes the per-visitor stores of the storefront.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tair/ministore/internal/auth"
	"github.com/tair/ministore/internal/cart"
	cartdomain "github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/internal/cart/usecase/command"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/internal/theme"
	"github.com/tair/ministore/pkg/logger"
)

// Session is one visitor's cart, sign-in, admin flag and theme.
type Session struct {
	ID       string
	Cart     *cart.Store
	Auth     *auth.Store
	Admin    *auth.AdminGate
	Theme    *theme.Store
	Checkout *command.CheckoutHandler

	mu       sync.Mutex
	lastSeen time.Time // guarded by the registry lock
}

// New builds a session whose snapshots live under "session:<id>" in store.
// Each component loads its persisted state here and nowhere else.
func New(ctx context.Context, id string, store storage.Store, publisher cartdomain.OrderPublisher) *Session {
	adapter := storage.NewAdapter(storage.WithPrefix(store, KeyPrefix(id)))

	c := cart.NewStore(ctx, adapter)
	return &Session{
		ID:       id,
		Cart:     c,
		Auth:     auth.NewStore(ctx, adapter),
		Admin:    auth.NewAdminGate(ctx, adapter),
		Theme:    theme.NewStore(ctx, adapter),
		Checkout: command.NewCheckoutHandler(c, publisher),
	}
}

const namespace = "session"

// KeyPrefix is the storage namespace of session id.
func KeyPrefix(id string) string {
	return namespace + ":" + id
}

// IsSessionKey reports whether a backend key belongs to a session, with or
// without an outer deployment prefix.
func IsSessionKey(key string) bool {
	return strings.HasPrefix(key, namespace+":") || strings.Contains(key, ":"+namespace+":")
}

// Do runs fn with the session locked, so one visitor's requests apply one at a time.
func (s *Session) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// DefaultMaxSessions bounds the sessions held in memory when no limit is set.
const DefaultMaxSessions = 10000

// Registry hands out sessions by id. Sessions live in memory until they have
// been idle for the idle timeout or the registry is full; an evicted session
// is restored from storage on its next request.
type Registry struct {
	store       storage.Store
	publisher   cartdomain.OrderPublisher
	idle        time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout evicts sessions not opened for d. It must be well above the
// request timeout. Zero disables idle eviction.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idle = d
	}
}

// WithMaxSessions caps the sessions held in memory.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxSessions = n
		}
	}
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store storage.Store, publisher cartdomain.OrderPublisher, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:       store,
		publisher:   publisher,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns the session for id, restoring it from storage on first use.
// An empty or malformed id opens a fresh session. The bool reports whether the
// returned session is new.
func (r *Registry) Open(ctx context.Context, id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return r.create(ctx, uuid.NewString()), true
	}

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		r.mu.Unlock()
		return s, false
	}
	r.mu.Unlock()

	return r.create(ctx, id), false
}

func (r *Registry) create(ctx context.Context, id string) *Session {
	s := New(ctx, id, r.store, r.publisher)

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request may have restored the same id meanwhile
	if existing, ok := r.sessions[id]; ok {
		existing.lastSeen = r.now()
		return existing
	}
	if len(r.sessions) >= r.maxSessions {
		r.evictIdleLocked(ctx)
	}
	if len(r.sessions) >= r.maxSessions {
		r.evictOldestLocked(ctx)
	}
	s.lastSeen = r.now()
	r.sessions[id] = s

	logger.Debug(ctx).Str("session_id", id).Msg("Session opened")
	return s
}

// Sweep drops sessions idle for longer than the idle timeout and returns how
// many were dropped. Their snapshots stay in storage.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictIdleLocked(ctx)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				logger.Info(ctx).Int("evicted", n).Int("live", r.Len()).Msg("Idle sessions evicted")
			}
		}
	}
}

func (r *Registry) evictIdleLocked(ctx context.Context) int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) && r.evictLocked(ctx, id, s) {
			evicted++
		}
	}
	return evicted
}

func (r *Registry) evictOldestLocked(ctx context.Context) {
	var (
		oldestID string
		oldest   *Session
	)
	for id, s := range r.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, s
		}
	}
	if oldest != nil {
		r.evictLocked(ctx, oldestID, oldest)
	}
}

// evictLocked skips a session that is serving a request right now.
func (r *Registry) evictLocked(ctx context.Context, id string, s *Session) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()

	delete(r.sessions, id)
	logger.Debug(ctx).Str("session_id", id).Msg("Session evicted")
	return true
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
