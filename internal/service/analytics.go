// Package service implements the analytics, search, and export operations
// over the loaded dataset. Every operation re-derives its filtered view
// from the current snapshot, so results never depend on call order.
package service

import (
	"github.com/shelfstats/shelfstats-server/internal/analysis"
	"github.com/shelfstats/shelfstats-server/internal/config"
	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
	"github.com/shelfstats/shelfstats-server/internal/logger"
)

const sampleRows = 10

// AnalyticsService computes the dashboard sections.
type AnalyticsService struct {
	handle *dataset.Handle
	cfg    config.AnalyticsConfig
	log    *logger.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(handle *dataset.Handle, cfg config.AnalyticsConfig, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		handle: handle,
		cfg:    cfg,
		log:    log,
	}
}

// view resolves the current snapshot and applies the filter to it.
func (s *AnalyticsService) view(p domain.FilterParams) (*dataset.Snapshot, []domain.Book) {
	snap := s.handle.Snapshot()
	return snap, analysis.Apply(snap.Rows(), snap.Domains(), p)
}

// Overview is the dataset overview section.
type Overview struct {
	SnapshotID   string    `json:"snapshot_id"`
	TotalRows    int       `json:"total_rows"`
	TotalColumns int       `json:"total_columns"`
	Columns      []string  `json:"columns"`
	FilteredRows int       `json:"filtered_rows"`
	Sample       []BookRow `json:"sample"`
	PriceSummary *Summary  `json:"price_summary,omitempty"`
	NoData       bool      `json:"no_data"`
}

// Overview returns the dataset shape, a sample of the filtered view, and
// price statistics. An empty view is reported through the NoData flag.
func (s *AnalyticsService) Overview(p domain.FilterParams) (*Overview, error) {
	snap, view := s.view(p)

	out := &Overview{
		SnapshotID:   snap.ID(),
		TotalRows:    snap.Len(),
		TotalColumns: len(snap.Columns()),
		Columns:      snap.Columns(),
		FilteredRows: len(view),
	}

	if len(view) == 0 {
		out.NoData = true
		out.Sample = []BookRow{}
		return out, nil
	}

	n := min(sampleRows, len(view))
	out.Sample = make([]BookRow, 0, n)
	for _, b := range view[:n] {
		out.Sample = append(out.Sample, toBookRow(b))
	}

	if summary, err := analysis.Describe(analysis.Prices(view)); err == nil {
		out.PriceSummary = toSummary(summary)
	} else if !errors.Is(err, errors.ErrNoData) {
		return nil, err
	}

	return out, nil
}

// Filters is the selectable filter domains payload.
type Filters struct {
	Types       []string `json:"types"`
	Genres      []string `json:"genres"`
	RatingMin   Float    `json:"rating_min"`
	RatingMax   Float    `json:"rating_max"`
	HasOutliers bool     `json:"has_outliers"`
}

// Filters returns the dataset-derived filter domains and defaults.
func (s *AnalyticsService) Filters() *Filters {
	d := s.handle.Snapshot().Domains()
	return &Filters{
		Types:       d.Types,
		Genres:      d.Genres,
		RatingMin:   Float(d.RatingMin),
		RatingMax:   Float(d.RatingMax),
		HasOutliers: d.HasOutliers,
	}
}

// PriceStats is the price section payload.
type PriceStats struct {
	Summary      *Summary       `json:"summary,omitempty"`
	Histogram    []HistogramBin `json:"histogram,omitempty"`
	MeanByType   []GroupMean    `json:"mean_by_type,omitempty"`
	FilteredRows int            `json:"filtered_rows"`
	NoData       bool           `json:"no_data"`
}

// PriceStats returns descriptive price statistics, the price histogram,
// and average price per Type over the filtered view.
func (s *AnalyticsService) PriceStats(p domain.FilterParams) (*PriceStats, error) {
	_, view := s.view(p)
	out := &PriceStats{FilteredRows: len(view)}

	prices := analysis.Prices(view)

	summary, err := analysis.Describe(prices)
	if err != nil {
		if errors.Is(err, errors.ErrNoData) {
			out.NoData = true
			return out, nil
		}
		return nil, err
	}
	out.Summary = toSummary(summary)

	bins, err := analysis.Histogram(prices, s.cfg.PriceBins)
	if err != nil && !errors.Is(err, errors.ErrNoData) {
		return nil, err
	}
	out.Histogram = toHistogramBins(bins)

	byType, err := analysis.MeanByGroup(view,
		func(b domain.Book) string { return b.Type },
		func(b domain.Book) float64 { return b.Price },
	)
	if err != nil && !errors.Is(err, errors.ErrNoData) {
		return nil, err
	}
	out.MeanByType = toGroupMeans(byType)

	return out, nil
}

// RatingStats is the ratings section payload.
type RatingStats struct {
	Summary      *Summary       `json:"summary,omitempty"`
	Histogram    []HistogramBin `json:"histogram,omitempty"`
	FilteredRows int            `json:"filtered_rows"`
	NoData       bool           `json:"no_data"`
}

// RatingStats returns descriptive rating statistics and the rating
// histogram over the filtered view. Rows with a missing rating contribute
// nothing; a view with no rated rows at all reports NoData.
func (s *AnalyticsService) RatingStats(p domain.FilterParams) (*RatingStats, error) {
	_, view := s.view(p)
	out := &RatingStats{FilteredRows: len(view)}

	ratings := analysis.Ratings(view)

	summary, err := analysis.Describe(ratings)
	if err != nil {
		if errors.Is(err, errors.ErrNoData) {
			out.NoData = true
			return out, nil
		}
		return nil, err
	}
	out.Summary = toSummary(summary)

	bins, err := analysis.Histogram(ratings, s.cfg.RatingBins)
	if err != nil && !errors.Is(err, errors.ErrNoData) {
		return nil, err
	}
	out.Histogram = toHistogramBins(bins)

	return out, nil
}

// AuthorStats is the authors and genres section payload.
type AuthorStats struct {
	TopAuthors        []ValueCount `json:"top_authors,omitempty"`
	MeanRatingByGenre []GroupMean  `json:"mean_rating_by_genre,omitempty"`
	FilteredRows      int          `json:"filtered_rows"`
	NoData            bool         `json:"no_data"`
}

// AuthorStats returns the most prolific authors and the average rating per
// Main Genre over the filtered view.
func (s *AnalyticsService) AuthorStats(p domain.FilterParams) (*AuthorStats, error) {
	_, view := s.view(p)
	out := &AuthorStats{FilteredRows: len(view)}

	if len(view) == 0 {
		out.NoData = true
		return out, nil
	}

	top, err := analysis.TopValueCounts(analysis.Authors(view), s.cfg.TopAuthors)
	if err != nil && !errors.Is(err, errors.ErrNoData) {
		return nil, err
	}
	out.TopAuthors = toValueCounts(top)

	byGenre, err := analysis.MeanByGroup(view,
		func(b domain.Book) string { return b.MainGenre },
		func(b domain.Book) float64 { return b.Rating },
	)
	if err != nil && !errors.Is(err, errors.ErrNoData) {
		return nil, err
	}
	out.MeanRatingByGenre = toGroupMeans(byGenre)

	if len(out.TopAuthors) == 0 && len(out.MeanRatingByGenre) == 0 {
		out.NoData = true
	}

	return out, nil
}

// Correlations is the correlation section payload. Cells are null where a
// coefficient is undefined.
type Correlations struct {
	Columns             []string  `json:"columns,omitempty"`
	Cells               [][]Float `json:"cells,omitempty"`
	FilteredRows        int       `json:"filtered_rows"`
	NoData              bool      `json:"no_data"`
	InsufficientColumns bool      `json:"insufficient_columns"`
}

// Correlations returns the Pearson matrix over the numeric columns of the
// filtered view. Both expected degradations, an empty view and fewer than
// two numeric columns, are flags in the payload rather than errors.
func (s *AnalyticsService) Correlations(p domain.FilterParams) (*Correlations, error) {
	_, view := s.view(p)
	out := &Correlations{FilteredRows: len(view)}

	cols := []analysis.Column{
		{Name: domain.ColumnPrice, Values: analysis.Prices(view)},
		{Name: domain.ColumnRating, Values: analysis.Ratings(view)},
		{Name: domain.ColumnPeopleRated, Values: analysis.PeopleRated(view)},
	}

	corr, err := analysis.CorrelationMatrix(cols)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrNoData):
			out.NoData = true
			return out, nil
		case errors.Is(err, errors.ErrInsufficientColumns):
			out.InsufficientColumns = true
			return out, nil
		default:
			return nil, err
		}
	}

	out.Columns = corr.Columns
	out.Cells = make([][]Float, len(corr.Cells))
	for i, row := range corr.Cells {
		out.Cells[i] = make([]Float, len(row))
		for j, v := range row {
			out.Cells[i][j] = Float(v)
		}
	}

	return out, nil
}
