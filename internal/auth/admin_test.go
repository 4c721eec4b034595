package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/ministore/internal/storage"
)

func TestAdminGate_UnlockAndLock(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(storage.NewMemoryStore())
	g := NewAdminGate(ctx, adapter)

	assert.False(t, g.IsAdmin())
	assert.ErrorIs(t, g.Require(), ErrAdminLocked)

	assert.ErrorIs(t, g.Unlock(ctx, "admin"), ErrWrongAdminPassword)
	assert.False(t, g.IsAdmin())

	require.NoError(t, g.Unlock(ctx, PlaceholderAdminPassword))
	assert.True(t, g.IsAdmin())
	assert.NoError(t, g.Require())
	assert.True(t, NewAdminGate(ctx, adapter).IsAdmin(), "flag survives reload")

	require.NoError(t, g.Lock(ctx))
	assert.False(t, g.IsAdmin())
	assert.False(t, NewAdminGate(ctx, adapter).IsAdmin())
}

func TestAdminGate_IndependentOfUser(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(storage.NewMemoryStore())
	users := NewStore(ctx, adapter)
	g := NewAdminGate(ctx, adapter)

	require.NoError(t, g.Unlock(ctx, PlaceholderAdminPassword))
	assert.False(t, users.IsAuthenticated())

	_, err := users.Login(ctx, "budi", "secret")
	require.NoError(t, err)
	require.NoError(t, users.Logout(ctx))
	assert.True(t, g.IsAdmin())
}

func TestAdminGate_PersistFailure(t *testing.T) {
	ctx := context.Background()
	g := NewAdminGate(ctx, storage.NewAdapter(brokenStore{storage.NewMemoryStore()}))

	require.Error(t, g.Unlock(ctx, PlaceholderAdminPassword))
	assert.False(t, g.IsAdmin())
}
