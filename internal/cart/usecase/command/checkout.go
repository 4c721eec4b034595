package command

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/pkg/apperror"
	"github.com/tair/ministore/pkg/logger"
)

// Cart is the slice of the cart store checkout needs.
type Cart interface {
	Items() []domain.Item
	ClearCart(ctx context.Context) error
}

// CheckoutCommand represents the command to place an order from the cart
type CheckoutCommand struct {
	Username string
	Name     string
	Email    string
	Address  string
}

// CheckoutHandler handles checkout command
type CheckoutHandler struct {
	cart      Cart
	publisher domain.OrderPublisher
	now       func() time.Time
}

// NewCheckoutHandler creates a new checkout handler. A nil publisher
// disables order events.
func NewCheckoutHandler(cart Cart, publisher domain.OrderPublisher) *CheckoutHandler {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &CheckoutHandler{cart: cart, publisher: publisher, now: time.Now}
}

// Handle validates the delivery details, turns the cart into an order and
// empties the cart. Publishing failures are logged and do not fail checkout.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	customer := domain.Customer{
		Name:    strings.TrimSpace(cmd.Name),
		Email:   strings.TrimSpace(cmd.Email),
		Address: strings.TrimSpace(cmd.Address),
	}

	if customer.Name == "" {
		return nil, apperror.Validation("name", "name is required")
	}
	if customer.Email == "" {
		return nil, apperror.Validation("email", "email is required")
	}
	if _, err := mail.ParseAddress(customer.Email); err != nil {
		return nil, apperror.Validation("email", "email is not valid")
	}
	if customer.Address == "" {
		return nil, apperror.Validation("address", "address is required")
	}

	items := h.cart.Items()
	if len(items) == 0 {
		return nil, apperror.Validation("cart", "cart is empty")
	}

	order := &domain.Order{
		ID:         fmt.Sprintf("ORD-%s", uuid.New().String()[:8]),
		Username:   cmd.Username,
		Customer:   customer,
		Items:      items,
		TotalItems: domain.TotalItems(items),
		TotalPrice: domain.TotalPrice(items),
		PlacedAt:   h.now().UTC(),
	}

	if err := h.cart.ClearCart(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := h.publisher.PublishOrderPlaced(ctx, order); err != nil {
		logger.Error(ctx).Err(err).Str("order_id", order.ID).Msg("Failed to publish order placed event")
	}

	logger.Info(ctx).
		Str("order_id", order.ID).
		Int("total_items", order.TotalItems).
		Int64("total_price", order.TotalPrice).
		Msg("Order placed")

	return order, nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// PublishOrderPlaced implements domain.OrderPublisher.
func (NoopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }
