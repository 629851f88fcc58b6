// Package di provides dependency injection configuration for the
// shelfstats server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfstats/shelfstats-server/internal/config"
	"github.com/shelfstats/shelfstats-server/internal/di/providers"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Dataset layer
	do.Provide(injector, providers.ProvideDatasetHandle)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideFileWatcher)

	// Business services
	do.Provide(injector, providers.ProvideAnalyticsService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideExportService)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Providers are lazy; invoking them
// here triggers dataset load, index build, and server startup.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AnalyticsService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.WatcherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
