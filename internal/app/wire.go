//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/sandeepkv93/storefront-session-gateway/internal/config"
	"github.com/sandeepkv93/storefront-session-gateway/internal/prefs"
)

// Initialize assembles the gateway from configuration down to the HTTP
// server. Regenerate wire_gen.go with `wire ./internal/app` after
// changing the provider set.
func Initialize(ctx context.Context) (*App, error) {
	wire.Build(
		config.Load,
		provideLogger,
		provideRuntime,
		provideDatabase,
		prefs.NewStorePreferenceRepository,
		provideInventoryCache,
		provideRegistry,
		provideServer,
		New,
	)
	return nil, nil
}
