package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/ministore/internal/catalog"
	catalogdomain "github.com/tair/ministore/internal/catalog/domain"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/internal/storefront/session"
	"github.com/tair/ministore/pkg/config"
)

func TestRedisBackend_CatalogOverridesOutliveSessionTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{AdminVariant: true, CollationLocale: "id"}
	cfg.Session.TTL = 7 * 24 * time.Hour
	backend := storage.WithPrefix(
		storage.NewRedisStore(client, cfg.Session.TTL, storage.ExpireWhen(session.IsSessionKey)),
		"ministore",
	)

	catalogStore := ProvideCatalogStore(ctx, cfg, backend)
	_, err := catalogStore.Upsert(ctx, catalog.ProductForm{Slug: "mug", Name: "Mug", Price: 45000})
	require.NoError(t, err)
	seeded := len(catalogdomain.SeedProducts())
	require.Len(t, catalogStore.List(), seeded+1)

	sessions := ProvideSessionRegistry(cfg, backend, nil)
	s, _ := sessions.Open(ctx, "")
	require.NoError(t, s.Cart.AddToCart(ctx, catalogStore.List()[0], 1))

	mr.FastForward(8 * 24 * time.Hour)

	reopened := ProvideCatalogStore(ctx, cfg, backend)
	assert.Len(t, reopened.List(), seeded+1)

	restored, _ := ProvideSessionRegistry(cfg, backend, nil).Open(ctx, s.ID)
	assert.Zero(t, restored.Cart.Len(), "session snapshots expire with the session TTL")
}
