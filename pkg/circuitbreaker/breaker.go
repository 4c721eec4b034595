// Package circuitbreaker stops calling a failing dependency for a while.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tair/ministore/pkg/logger"
)

// State represents the state of a circuit breaker
type State string

const (
	StateClosed   State = "closed"    // Normal operation
	StateOpen     State = "open"      // Blocking calls
	StateHalfOpen State = "half-open" // Testing if the dependency recovered
)

// ErrOpen is returned by Call while the circuit is open.
var ErrOpen = errors.New("circuit breaker is open")

// halfOpenSuccesses is the number of good calls that close a half-open circuit.
const halfOpenSuccesses = 3

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	now         func() time.Time

	mu              sync.Mutex
	state           State
	failures        int
	successCount    int
	lastStateChange time.Time
}

// New creates a breaker that opens after maxFailures consecutive failures and
// lets a trial call through after timeout.
func New(name string, maxFailures int, timeout time.Duration) *Breaker {
	b := &Breaker{
		name:        name,
		maxFailures: maxFailures,
		timeout:     timeout,
		now:         time.Now,
		state:       StateClosed,
	}
	b.lastStateChange = b.now()
	return b
}

// Call executes fn unless the circuit is open.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen && b.now().Sub(b.lastStateChange) > b.timeout {
		b.setState(StateHalfOpen)
		b.successCount = 0
	}
	current := b.state
	b.mu.Unlock()

	if current == StateOpen {
		return fmt.Errorf("%w: %s", ErrOpen, b.name)
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) onFailure() {
	b.failures++

	switch {
	case b.state == StateHalfOpen:
		b.setState(StateOpen)
		logger.Logger.Warn().
			Str("circuit", b.name).
			Msg("Circuit breaker reopened after half-open failure")
	case b.failures >= b.maxFailures && b.state == StateClosed:
		b.setState(StateOpen)
		logger.Logger.Error().
			Str("circuit", b.name).
			Int("failures", b.failures).
			Int("threshold", b.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= halfOpenSuccesses {
			b.setState(StateClosed)
			b.failures = 0
			b.successCount = 0
			logger.Logger.Info().
				Str("circuit", b.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) setState(s State) {
	b.state = s
	b.lastStateChange = b.now()
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
