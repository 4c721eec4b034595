package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/ministore/internal/cart"
	"github.com/tair/ministore/internal/cart/domain"
	catalog "github.com/tair/ministore/internal/catalog/domain"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/apperror"
)

type recordingPublisher struct {
	orders []*domain.Order
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order *domain.Order) error {
	p.orders = append(p.orders, order)
	return p.err
}

type stuckCart struct{ items []domain.Item }

func (c stuckCart) Items() []domain.Item { return c.items }
func (stuckCart) ClearCart(context.Context) error { return errors.New("storage offline") }

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	s := cart.NewStore(ctx, storage.NewAdapter(storage.NewMemoryStore()))
	require.NoError(t, s.AddToCart(ctx, catalog.Product{ID: "p1", Slug: "a", Name: "A", Price: 99000}, 2))
	require.NoError(t, s.AddToCart(ctx, catalog.Product{ID: "p2", Slug: "b", Name: "B", Price: 199000}, 1))
	return s
}

func validCommand() CheckoutCommand {
	return CheckoutCommand{Username: "budi", Name: " Budi ", Email: "budi@example.com", Address: "Jl. Merdeka 1"}
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	c := filledCart(t)
	pub := &recordingPublisher{}
	h := NewCheckoutHandler(c, pub)
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return placed }

	order, err := h.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-[0-9a-f-]{8}$`, order.ID)
	assert.Equal(t, "Budi", order.Customer.Name)
	assert.Equal(t, "budi", order.Username)
	assert.Equal(t, 3, order.TotalItems)
	assert.Equal(t, int64(397000), order.TotalPrice)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, placed, order.PlacedAt)

	assert.Zero(t, c.Len())
	require.Len(t, pub.orders, 1)
	assert.Equal(t, order.ID, pub.orders[0].ID)
}

func TestCheckout_Validation(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*CheckoutCommand)
		field string
	}{
		{"missing name", func(c *CheckoutCommand) { c.Name = "  " }, "name"},
		{"missing email", func(c *CheckoutCommand) { c.Email = "" }, "email"},
		{"bad email", func(c *CheckoutCommand) { c.Email = "not-an-email" }, "email"},
		{"missing address", func(c *CheckoutCommand) { c.Address = "" }, "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := filledCart(t)
			cmd := validCommand()
			tt.mut(&cmd)

			_, err := NewCheckoutHandler(c, nil).Handle(context.Background(), cmd)
			require.Error(t, err)

			var verr *apperror.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 2, c.Len(), "cart untouched on validation failure")
		})
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	c := cart.NewStore(context.Background(), storage.NewAdapter(storage.NewMemoryStore()))

	_, err := NewCheckoutHandler(c, nil).Handle(context.Background(), validCommand())
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCheckout_PublishFailureStillSucceeds(t *testing.T) {
	c := filledCart(t)
	pub := &recordingPublisher{err: errors.New("broker down")}

	order, err := NewCheckoutHandler(c, pub).Handle(context.Background(), validCommand())
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Zero(t, c.Len())
}

func TestCheckout_ClearFailureAbortsOrder(t *testing.T) {
	items := []domain.Item{{Product: catalog.Product{ID: "p1", Price: 10}, Quantity: 1}}
	pub := &recordingPublisher{}

	_, err := NewCheckoutHandler(stuckCart{items: items}, pub).Handle(context.Background(), validCommand())
	require.Error(t, err)
	assert.Empty(t, pub.orders)
}
