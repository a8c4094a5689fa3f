// Package di provides dependency injection configuration for the BooksMood client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Cossomoj/booksmood/internal/config"
	"github.com/Cossomoj/booksmood/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// Command-line overrides take precedence over the environment when the
// config is built.
func NewContainer(overrides config.Overrides) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfigWith(overrides))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)

	// Backend API
	do.Provide(injector, providers.ProvideAPIClient)
	do.Provide(injector, providers.ProvideSession)

	// Media backend
	do.Provide(injector, providers.ProvideMediaPlayer)

	// Catalog and user flows
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideBookmarks)
	do.Provide(injector, providers.ProvideFavorites)
	do.Provide(injector, providers.ProvideNotifier)

	// Application
	do.Provide(injector, providers.ProvideApp)

	return injector
}
