package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/ministore/internal/storage"
)

func newLimiterAt(t *testing.T, addr string, limit int) *RateLimiter {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, limit, time.Minute)
}

func newLimiter(t *testing.T, limit int) *RateLimiter {
	t.Helper()
	return newLimiterAt(t, miniredis.RunT(t).Addr(), limit)
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := newLimiter(t, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/login", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest("POST", "/api/auth/login", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code, "limits are per client")
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := newLimiter(t, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	allowed, _, _, err := rl.checkLimit(t.Context(), "ip")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, _, err = rl.checkLimit(t.Context(), "ip")
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, _, _, err = rl.checkLimit(t.Context(), "ip")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := newLimiterAt(t, "127.0.0.1:1", 1)

	rec := httptest.NewRecorder()
	rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_LoginIsRateLimited(t *testing.T) {
	s := newTestServerWith(t, storage.NewMemoryStore(), true, newLimiter(t, 1))

	code, _ := s.do("POST", "/api/auth/login", credentials{Username: "budi", Password: "secret"})
	assert.Equal(t, http.StatusOK, code)
	code, env := s.do("POST", "/api/auth/login", credentials{Username: "budi", Password: "secret"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Rate limit exceeded", env.Error)

	code, _ = s.do("GET", "/api/cart", nil)
	assert.Equal(t, http.StatusOK, code, "other routes are not limited")
}
