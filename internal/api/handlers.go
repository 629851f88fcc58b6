package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
	"github.com/shelfstats/shelfstats-server/internal/http/response"
	"github.com/shelfstats/shelfstats-server/internal/service"
)

// handleHealthCheck reports liveness and basic dataset state.
// GET /health
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	overview, err := s.analytics.Overview(domain.FilterParams{})
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
		}, s.logger.Logger)
		return
	}

	response.Success(w, map[string]any{
		"status":      "healthy",
		"snapshot_id": overview.SnapshotID,
		"rows":        overview.TotalRows,
		"time":        time.Now().UTC().Format(time.RFC3339),
	}, s.logger.Logger)
}

// handleDataset returns the overview section.
// GET /api/v1/dataset
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	out, err := s.analytics.Overview(p)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, out, s.logger.Logger)
}

// handleFilters returns the selectable filter domains.
// GET /api/v1/filters
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.analytics.Filters(), s.logger.Logger)
}

// handlePriceStats returns the price section.
// GET /api/v1/stats/price
func (s *Server) handlePriceStats(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	out, err := s.analytics.PriceStats(p)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, out, s.logger.Logger)
}

// handleRatingStats returns the ratings section.
// GET /api/v1/stats/ratings
func (s *Server) handleRatingStats(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	out, err := s.analytics.RatingStats(p)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, out, s.logger.Logger)
}

// handleAuthorStats returns the authors and genres section.
// GET /api/v1/stats/authors
func (s *Server) handleAuthorStats(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	out, err := s.analytics.AuthorStats(p)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, out, s.logger.Logger)
}

// handleCorrelations returns the correlation matrix section.
// GET /api/v1/correlations
func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	out, err := s.analytics.Correlations(p)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, out, s.logger.Logger)
}

// handleChart renders a named chart as PNG.
// GET /api/v1/charts/{name}.png
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	name := chi.URLParam(r, "name")

	// Render to a buffer first so a failure can still produce a clean
	// JSON error instead of a half-written image.
	var buf bytes.Buffer
	if err := s.analytics.RenderChart(&buf, name, p); err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).Warn("write chart response")
	}
}

// handleSearch runs a full-text query over the filtered view.
// GET /api/v1/search?q=...&limit=...
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		response.HandleError(w, errors.Validation("query parameter q is required"), s.logger.Logger)
		return
	}
	limit := parseLimitParam(r.URL.Query(), "limit", 25)

	out, err := s.search.Search(r.Context(), q, limit, p)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}
	response.Success(w, out, s.logger.Logger)
}

// handleExport streams the filtered view as a download.
// GET /api/v1/export?format=csv|xlsx
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = service.FormatCSV
	}

	var buf bytes.Buffer
	if err := s.export.Export(&buf, format, p); err != nil {
		response.HandleError(w, err, s.logger.Logger)
		return
	}

	switch format {
	case service.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.export.Filename(format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).Warn("write export response")
	}
}
