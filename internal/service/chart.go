package service

import (
	"io"

	"github.com/shelfstats/shelfstats-server/internal/analysis"
	"github.com/shelfstats/shelfstats-server/internal/charts"
	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
)

// Chart names served by the charts endpoint.
const (
	ChartPriceHistogram    = "price-histogram"
	ChartPriceByType       = "price-by-type"
	ChartRatingHistogram   = "rating-histogram"
	ChartPriceVsRating     = "price-vs-rating"
	ChartPriceVsPopularity = "price-vs-popularity"
	ChartTopAuthors        = "top-authors"
	ChartRatingByGenre     = "rating-by-genre"
)

// ChartNames lists every renderable chart.
var ChartNames = []string{
	ChartPriceHistogram,
	ChartPriceByType,
	ChartRatingHistogram,
	ChartPriceVsRating,
	ChartPriceVsPopularity,
	ChartTopAuthors,
	ChartRatingByGenre,
}

// RenderChart renders the named chart as a PNG over the filtered view.
// Unknown names are ErrNotFound; an empty view is ErrNoData.
func (s *AnalyticsService) RenderChart(w io.Writer, name string, p domain.FilterParams) error {
	_, view := s.view(p)

	switch name {
	case ChartPriceHistogram:
		bins, err := analysis.Histogram(analysis.Prices(view), s.cfg.PriceBins)
		if err != nil {
			return err
		}
		return charts.Histogram(w, "Price Distribution", bins)

	case ChartPriceByType:
		groups, err := analysis.MeanByGroup(view,
			func(b domain.Book) string { return b.Type },
			func(b domain.Book) float64 { return b.Price },
		)
		if err != nil {
			return err
		}
		return charts.GroupBars(w, "Average Price by Type", groups)

	case ChartRatingHistogram:
		bins, err := analysis.Histogram(analysis.Ratings(view), s.cfg.RatingBins)
		if err != nil {
			return err
		}
		return charts.Histogram(w, "Rating Distribution", bins)

	case ChartPriceVsRating:
		if len(view) == 0 {
			return errors.NoData("no rows match the current selection")
		}
		return charts.Scatter(w, "Price vs Rating", "Rating", "Price",
			analysis.Ratings(view), analysis.Prices(view), false)

	case ChartPriceVsPopularity:
		if len(view) == 0 {
			return errors.NoData("no rows match the current selection")
		}
		return charts.Scatter(w, "Price vs Popularity", "People Rated", "Price",
			analysis.PeopleRated(view), analysis.Prices(view), true)

	case ChartTopAuthors:
		top, err := analysis.TopValueCounts(analysis.Authors(view), s.cfg.TopAuthors)
		if err != nil {
			return err
		}
		return charts.CountBars(w, "Most Published Authors", top)

	case ChartRatingByGenre:
		groups, err := analysis.MeanByGroup(view,
			func(b domain.Book) string { return b.MainGenre },
			func(b domain.Book) float64 { return b.Rating },
		)
		if err != nil {
			return err
		}
		return charts.GroupBars(w, "Average Rating by Main Genre", groups)

	default:
		return errors.NotFoundf("unknown chart %q", name)
	}
}
