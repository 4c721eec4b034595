package kafka

import (
	"context"
	"time"

	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/pkg/circuitbreaker"
)

// GuardedPublisher puts a circuit breaker in front of an order publisher so a
// dead broker fails checkout publishes fast instead of waiting on retries.
type GuardedPublisher struct {
	next    domain.OrderPublisher
	breaker *circuitbreaker.Breaker
}

// NewGuardedPublisher opens after maxFailures consecutive publish errors and
// retries after cooldown.
func NewGuardedPublisher(next domain.OrderPublisher, maxFailures int, cooldown time.Duration) *GuardedPublisher {
	return &GuardedPublisher{
		next:    next,
		breaker: circuitbreaker.New("kafka-order-publisher", maxFailures, cooldown),
	}
}

func (g *GuardedPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return g.breaker.Call(func() error {
		return g.next.PublishOrderPlaced(ctx, order)
	})
}

// State reports the breaker state.
func (g *GuardedPublisher) State() circuitbreaker.State {
	return g.breaker.State()
}
