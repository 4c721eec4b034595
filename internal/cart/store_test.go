package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/ministore/internal/cart/domain"
	catalog "github.com/tair/ministore/internal/catalog/domain"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/apperror"
)

type brokenStore struct{ storage.Store }

func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func product(id string, price int64) catalog.Product {
	return catalog.Product{ID: id, Slug: id, Name: id, Price: price}
}

func newStore(t *testing.T) (*Store, *storage.Adapter) {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemoryStore())
	return NewStore(context.Background(), adapter), adapter
}

func TestAddToCart_MergesQuantities(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	p := product("p1", 99000)

	require.NoError(t, s.AddToCart(ctx, p, 1))
	require.NoError(t, s.AddToCart(ctx, p, 2))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, s.Quantity("p1"))
}

func TestAddToCart_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.AddToCart(ctx, product(id, 1), 1))
	}
	require.NoError(t, s.AddToCart(ctx, product("a", 1), 5))

	ids := make([]string, 0, 3)
	for _, it := range s.Items() {
		ids = append(ids, it.Product.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestAddToCart_RejectsNonPositiveQuantity(t *testing.T) {
	s, _ := newStore(t)

	err := s.AddToCart(context.Background(), product("p1", 1), 0)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Zero(t, s.Len())
}

func TestAddToCart_BoundsQuantity(t *testing.T) {
	ctx := context.Background()
	s, adapter := newStore(t)
	p := product("p1", 99000)

	err := s.AddToCart(ctx, p, math.MaxInt)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, s.AddToCart(ctx, p, domain.MaxQuantity))
	err = s.AddToCart(ctx, p, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, domain.MaxQuantity, s.Quantity("p1"))
	assert.Equal(t, domain.MaxQuantity, s.TotalItems())

	persisted, ok := storage.Load[[]domain.Item](ctx, adapter, storage.KeyCart)
	require.True(t, ok)
	assert.Equal(t, domain.MaxQuantity, persisted[0].Quantity)

	err = s.UpdateQuantity(ctx, "p1", domain.MaxQuantity+1)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, domain.MaxQuantity, s.Quantity("p1"))
}

func TestAddToCart_BoundsLinesAndPrice(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	for i := range domain.MaxLines {
		require.NoError(t, s.AddToCart(ctx, product(fmt.Sprintf("p%d", i), catalog.MaxPrice), domain.MaxQuantity))
	}
	err := s.AddToCart(ctx, product("extra", 1), 1)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, domain.MaxLines, s.Len())
	assert.Positive(t, s.TotalPrice())

	err = s.AddToCart(ctx, product("p0", catalog.MaxPrice+1), 1)
	assert.True(t, apperror.IsValidation(err))
}

func TestNewStore_ClampsOversizedSnapshot(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(storage.NewMemoryStore())
	snapshot := []domain.Item{
		{Product: product("p1", 10), Quantity: math.MaxInt},
		{Product: product("p1", 10), Quantity: 5},
		{Product: product("p2", catalog.MaxPrice+1), Quantity: 1},
	}
	require.NoError(t, adapter.Save(ctx, storage.KeyCart, snapshot))

	s := NewStore(ctx, adapter)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, domain.MaxQuantity, s.Quantity("p1"))
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.AddToCart(ctx, product("p1", 99000), 2))
	require.NoError(t, s.AddToCart(ctx, product("p2", 199000), 1))

	assert.Equal(t, int64(397000), s.TotalPrice())
	assert.Equal(t, 3, s.TotalItems())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.AddToCart(ctx, product("p1", 10), 1))
	require.NoError(t, s.AddToCart(ctx, product("p2", 20), 4))

	require.NoError(t, s.UpdateQuantity(ctx, "p1", 7))
	assert.Equal(t, 7, s.Quantity("p1"))

	require.NoError(t, s.UpdateQuantity(ctx, "p2", 0))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 7, s.TotalItems())

	require.NoError(t, s.UpdateQuantity(ctx, "p1", -3))
	assert.Zero(t, s.Len())

	require.NoError(t, s.UpdateQuantity(ctx, "ghost", 2))
	assert.Zero(t, s.Len(), "unknown ids are not added")
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.AddToCart(ctx, product("p1", 10), 1))
	require.NoError(t, s.AddToCart(ctx, product("p2", 20), 1))

	require.NoError(t, s.RemoveFromCart(ctx, "missing"))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.RemoveFromCart(ctx, "p1"))
	assert.Equal(t, int64(20), s.TotalPrice())

	require.NoError(t, s.ClearCart(ctx))
	assert.Zero(t, s.Len())
	assert.Zero(t, s.TotalPrice())
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, adapter := newStore(t)
	require.NoError(t, s.AddToCart(ctx, product("p1", 99000), 2))
	require.NoError(t, s.AddToCart(ctx, product("p2", 199000), 1))

	reloaded := NewStore(ctx, adapter)
	assert.Equal(t, s.Items(), reloaded.Items())

	require.NoError(t, s.ClearCart(ctx))
	stored, ok := storage.Load[[]domain.Item](ctx, adapter, storage.KeyCart)
	require.True(t, ok)
	assert.Empty(t, stored)
}

func TestNewStore_NormalizesSnapshot(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(storage.NewMemoryStore())
	snapshot := []domain.Item{
		{Product: product("p1", 10), Quantity: 1},
		{Product: product("p2", 20), Quantity: 0},
		{Product: product("p1", 10), Quantity: 2},
		{Product: product("", 5), Quantity: 1},
	}
	require.NoError(t, adapter.Save(ctx, storage.KeyCart, snapshot))

	s := NewStore(ctx, adapter)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestNewStore_MalformedSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, storage.KeyCart, []byte("not json")))

	s := NewStore(ctx, storage.NewAdapter(mem))
	assert.Zero(t, s.Len())
}

func TestMutation_FailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewAdapter(brokenStore{storage.NewMemoryStore()}))

	err := s.AddToCart(ctx, product("p1", 10), 1)
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestItems_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.AddToCart(ctx, product("p1", 10), 1))

	items := s.Items()
	items[0].Quantity = 99
	items[0].Product.Name = "changed"

	assert.Equal(t, 1, s.Quantity("p1"))
	assert.Equal(t, "p1", s.Items()[0].Product.Name)
}
