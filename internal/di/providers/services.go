package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfstats/shelfstats-server/internal/config"
	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/ratelimit"
	"github.com/shelfstats/shelfstats-server/internal/service"
)

// ProvideAnalyticsService provides the analytics service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handle := do.MustInvoke[*dataset.Handle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(handle, cfg.Analytics, log), nil
}

// ProvideSearchService provides the search service, or nil when search is
// disabled; the server skips the route in that case.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Search.Enabled {
		return nil, nil
	}

	handle := do.MustInvoke[*dataset.Handle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(handle, searchHandle.Index, log), nil
}

// ProvideExportService provides the export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	handle := do.MustInvoke[*dataset.Handle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(handle, log), nil
}

// RateLimiterHandle wraps the keyed rate limiter with Shutdownable.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-client API rate limiter. A
// non-positive RPS disables limiting.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if cfg.RateLimit.RPS <= 0 {
		return &RateLimiterHandle{}, nil
	}

	return &RateLimiterHandle{
		Limiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}
