// Package api provides the HTTP API server and handlers for the shelfstats
// dashboard.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfstats/shelfstats-server/internal/config"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/ratelimit"
	"github.com/shelfstats/shelfstats-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	analytics *service.AnalyticsService
	search    *service.SearchService
	export    *service.ExportService
	limiter   *ratelimit.KeyedRateLimiter
	cfg       *config.Config
	router    *chi.Mux
	logger    *logger.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(analytics *service.AnalyticsService, searchSvc *service.SearchService, exportSvc *service.ExportService, limiter *ratelimit.KeyedRateLimiter, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		analytics: analytics,
		search:    searchSvc,
		export:    exportSvc,
		limiter:   limiter,
		cfg:       cfg,
		router:    chi.NewRouter(),
		logger:    log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Dashboard page.
	s.router.Get("/", s.handleDashboard)

	// API v1. Everything is read-only and filter-parameterized.
	s.router.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimitMiddleware(s.limiter, s.logger))
		}

		r.Get("/dataset", s.handleDataset)
		r.Get("/filters", s.handleFilters)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/price", s.handlePriceStats)
			r.Get("/ratings", s.handleRatingStats)
			r.Get("/authors", s.handleAuthorStats)
		})

		r.Get("/correlations", s.handleCorrelations)
		r.Get("/charts/{name}.png", s.handleChart)

		if s.search != nil {
			r.Get("/search", s.handleSearch)
		}

		r.Get("/export", s.handleExport)
	})
}
