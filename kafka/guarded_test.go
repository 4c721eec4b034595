package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/pkg/circuitbreaker"
)

type countingPublisher struct {
	calls int
	err   error
}

func (c *countingPublisher) PublishOrderPlaced(context.Context, *domain.Order) error {
	c.calls++
	return c.err
}

func TestGuardedPublisher_ShortCircuitsAfterFailures(t *testing.T) {
	inner := &countingPublisher{err: errors.New("broker down")}
	g := NewGuardedPublisher(inner, 2, time.Minute)
	order := &domain.Order{ID: "ORD-1"}

	assert.Error(t, g.PublishOrderPlaced(context.Background(), order))
	assert.Error(t, g.PublishOrderPlaced(context.Background(), order))
	assert.Equal(t, circuitbreaker.StateOpen, g.State())

	err := g.PublishOrderPlaced(context.Background(), order)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedPublisher_PassesThrough(t *testing.T) {
	inner := &countingPublisher{}
	g := NewGuardedPublisher(inner, 2, time.Minute)

	assert.NoError(t, g.PublishOrderPlaced(context.Background(), &domain.Order{ID: "ORD-2"}))
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, circuitbreaker.StateClosed, g.State())
}
