package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail() error { return errBoom }
func ok() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("kafka", 3, time.Minute)

	for range 2 {
		assert.ErrorIs(t, b.Call(fail), errBoom)
	}
	require.NoError(t, b.Call(ok))
	assert.Equal(t, StateClosed, b.State(), "a success resets the count")

	for range 3 {
		_ = b.Call(fail)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Now()
	b := New("kafka", 1, time.Minute)
	b.now = func() time.Time { return now }

	_ = b.Call(fail)
	require.Equal(t, StateOpen, b.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Call(ok))
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Call(ok))
	require.NoError(t, b.Call(ok))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := New("kafka", 1, time.Minute)
	b.now = func() time.Time { return now }

	_ = b.Call(fail)
	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, b.Call(fail), errBoom)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Call(ok), ErrOpen)
}
