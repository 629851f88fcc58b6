package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shelfstats/shelfstats-server/internal/service"
)

//go:embed templates/*.html
var templates embed.FS

var printer = message.NewPrinter(language.English)

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"count": func(n int) string {
		return printer.Sprintf("%d", n)
	},
	"num": func(f service.Float) string {
		if f.IsMissing() {
			return "n/a"
		}
		return printer.Sprintf("%.2f", float64(f))
	},
	"corrStyle": corrStyle,
}).ParseFS(templates, "templates/dashboard.html"))

// corrStyle grades a correlation cell from red (negative) through white to
// blue (positive). Undefined cells stay unstyled.
func corrStyle(f service.Float) template.CSS {
	if f.IsMissing() {
		return ""
	}
	v := float64(f)
	alpha := v
	if alpha < 0 {
		alpha = -alpha
	}
	if v >= 0 {
		return template.CSS(fmt.Sprintf("background: rgba(43, 108, 176, %.2f)", alpha*0.6))
	}
	return template.CSS(fmt.Sprintf("background: rgba(197, 48, 48, %.2f)", alpha*0.6))
}

// dashboardData is everything the dashboard template renders.
type dashboardData struct {
	ServerName      string
	Query           template.URL
	Filters         *service.Filters
	SelectedTypes   map[string]bool
	SelectedGenres  map[string]bool
	RatingMin       service.Float
	RatingMax       service.Float
	ExcludeOutliers bool
	Overview        *service.Overview
	Price           *service.PriceStats
	Ratings         *service.RatingStats
	Authors         *service.AuthorStats
	Correlations    *service.Correlations
}

// handleDashboard renders the full dashboard page: filter controls plus
// the five display sections, recomputed for the submitted filter.
// GET /
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filters := s.analytics.Filters()

	data := dashboardData{
		ServerName:      s.cfg.Server.Name,
		Query:           template.URL(r.URL.RawQuery),
		Filters:         filters,
		SelectedTypes:   selectedSet(p.Types, filters.Types),
		SelectedGenres:  selectedSet(p.Genres, filters.Genres),
		RatingMin:       filters.RatingMin,
		RatingMax:       filters.RatingMax,
		ExcludeOutliers: p.ExcludeOutliers,
	}
	if p.RatingMin != nil {
		data.RatingMin = service.Float(*p.RatingMin)
	}
	if p.RatingMax != nil {
		data.RatingMax = service.Float(*p.RatingMax)
	}

	if data.Overview, err = s.analytics.Overview(p); err != nil {
		s.renderError(w, err)
		return
	}
	if data.Price, err = s.analytics.PriceStats(p); err != nil {
		s.renderError(w, err)
		return
	}
	if data.Ratings, err = s.analytics.RatingStats(p); err != nil {
		s.renderError(w, err)
		return
	}
	if data.Authors, err = s.analytics.AuthorStats(p); err != nil {
		s.renderError(w, err)
		return
	}
	if data.Correlations, err = s.analytics.Correlations(p); err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("render dashboard")
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.logger.WithError(err).Error("dashboard data")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// selectedSet marks which candidate values the form should show as checked.
// A nil selection means everything is selected.
func selectedSet(selected, candidates []string) map[string]bool {
	out := make(map[string]bool, len(candidates))
	if selected == nil {
		for _, c := range candidates {
			out[c] = true
		}
		return out
	}
	for _, v := range selected {
		out[v] = true
	}
	return out
}
