//go:build wireinject
// +build wireinject

package storefront

import (
	"context"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/pkg/config"
)

// InitializeStorefront builds the storefront in dependency order: storage,
// catalog, then sessions (each session restores its own stores) and HTTP.
func InitializeStorefront(
	ctx context.Context,
	cfg *config.Config,
	store storage.Store,
	publisher domain.OrderPublisher,
	registerer prometheus.Registerer,
) (*Storefront, error) {
	wire.Build(
		AllSet,
		NewStorefront,
	)
	return nil, nil
}
