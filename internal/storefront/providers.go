// Package storefront wires the catalog, the session registry and the HTTP
// surface together.
package storefront

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"golang.org/x/text/language"

	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/internal/catalog"
	catalogdomain "github.com/tair/ministore/internal/catalog/domain"
	"github.com/tair/ministore/internal/catalog/search"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/internal/storefront/delivery/http"
	"github.com/tair/ministore/internal/storefront/session"
	"github.com/tair/ministore/pkg/config"
)

// ProvideCatalogStore provides the process-wide catalog. Catalog snapshots use
// the unprefixed backend so every session sees the same overrides.
func ProvideCatalogStore(ctx context.Context, cfg *config.Config, store storage.Store) *catalog.Store {
	return catalog.NewStore(ctx, storage.NewAdapter(store), catalogdomain.SeedProducts(), cfg.AdminVariant)
}

// ProvideSearchEngine provides the query engine for the configured collation locale
func ProvideSearchEngine(cfg *config.Config) (*search.Engine, error) {
	tag, err := language.Parse(cfg.CollationLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid collation locale %q: %w", cfg.CollationLocale, err)
	}
	return search.NewEngine(tag), nil
}

// ProvideSearchCache provides the memoizing front of the engine
func ProvideSearchCache(engine *search.Engine) *search.Cache {
	return search.NewCache(engine)
}

// ProvideSessionRegistry provides the session registry. Idle sessions leave
// memory after the session TTL.
func ProvideSessionRegistry(cfg *config.Config, store storage.Store, publisher domain.OrderPublisher) *session.Registry {
	return session.NewRegistry(store, publisher,
		session.WithIdleTimeout(cfg.Session.TTL),
		session.WithMaxSessions(cfg.Session.MaxLive),
	)
}

// ProvideSessionTokens provides the session token codec
func ProvideSessionTokens(cfg *config.Config) *http.SessionTokens {
	return http.NewSessionTokens(cfg.Session.Secret, cfg.Session.TTL)
}

// Wire sets
var CatalogSet = wire.NewSet(
	ProvideCatalogStore,
	ProvideSearchEngine,
	ProvideSearchCache,
)

var SessionSet = wire.NewSet(
	ProvideSessionRegistry,
	ProvideSessionTokens,
)

var AllSet = wire.NewSet(
	CatalogSet,
	SessionSet,
	http.NewStorefrontHandler,
)

// Storefront is the assembled application core.
type Storefront struct {
	Catalog  *catalog.Store
	Sessions *session.Registry
	Handler  *http.StorefrontHandler
}

// NewStorefront bundles the wired components.
func NewStorefront(catalogStore *catalog.Store, sessions *session.Registry, handler *http.StorefrontHandler) *Storefront {
	return &Storefront{Catalog: catalogStore, Sessions: sessions, Handler: handler}
}
