// Package analysis implements the filter pipeline and the aggregation
// functions over the book listings dataset. Everything here is a pure
// transform: no package state, no mutation of inputs.
package analysis

import (
	"github.com/shelfstats/shelfstats-server/internal/domain"
)

// Apply returns the rows matching the conjunction of the active predicates:
// Type membership AND Main Genre membership AND inclusive rating interval
// AND, when the dataset carries an outlier column and exclusion is on,
// Price_outlier == false.
//
// The result preserves source row order and is a fresh slice; mutating it
// never affects the dataset. Nil selections on params fall back to the
// domain defaults (all distinct non-missing values, full rating span), so a
// row with a missing Type or Main Genre never matches. An empty non-nil
// selection matches nothing, which is a valid outcome, not an error.
func Apply(rows []domain.Book, domains domain.FilterDomains, p domain.FilterParams) []domain.Book {
	types := p.Types
	if types == nil {
		types = domains.Types
	}
	genres := p.Genres
	if genres == nil {
		genres = domains.Genres
	}

	lo := domains.RatingMin
	if p.RatingMin != nil {
		lo = *p.RatingMin
	}
	hi := domains.RatingMax
	if p.RatingMax != nil {
		hi = *p.RatingMax
	}

	typeSet := toSet(types)
	genreSet := toSet(genres)
	excludeOutliers := p.ExcludeOutliers && domains.HasOutliers

	out := make([]domain.Book, 0, len(rows))
	for _, b := range rows {
		if matches(b, typeSet, genreSet, lo, hi, excludeOutliers) {
			out = append(out, b)
		}
	}
	return out
}

// ApplyIndices is Apply but returns the source row indices of the matching
// rows instead of copies. Search uses it to intersect full-text hits with
// the current selection.
func ApplyIndices(rows []domain.Book, domains domain.FilterDomains, p domain.FilterParams) []int {
	types := p.Types
	if types == nil {
		types = domains.Types
	}
	genres := p.Genres
	if genres == nil {
		genres = domains.Genres
	}

	lo := domains.RatingMin
	if p.RatingMin != nil {
		lo = *p.RatingMin
	}
	hi := domains.RatingMax
	if p.RatingMax != nil {
		hi = *p.RatingMax
	}

	typeSet := toSet(types)
	genreSet := toSet(genres)
	excludeOutliers := p.ExcludeOutliers && domains.HasOutliers

	out := make([]int, 0, len(rows))
	for i, b := range rows {
		if matches(b, typeSet, genreSet, lo, hi, excludeOutliers) {
			out = append(out, i)
		}
	}
	return out
}

func matches(b domain.Book, typeSet, genreSet map[string]struct{}, lo, hi float64, excludeOutliers bool) bool {
	if _, ok := typeSet[b.Type]; !ok {
		return false
	}
	if _, ok := genreSet[b.MainGenre]; !ok {
		return false
	}
	// NaN ratings fail both comparisons and drop out, matching the
	// candidate-domain rule for missing values.
	if !(b.Rating >= lo && b.Rating <= hi) {
		return false
	}
	if excludeOutliers && b.PriceOutlier {
		return false
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Prices extracts the price column from a view.
func Prices(rows []domain.Book) []float64 {
	out := make([]float64, len(rows))
	for i, b := range rows {
		out[i] = b.Price
	}
	return out
}

// Ratings extracts the rating column from a view.
func Ratings(rows []domain.Book) []float64 {
	out := make([]float64, len(rows))
	for i, b := range rows {
		out[i] = b.Rating
	}
	return out
}

// PeopleRated extracts the review count column from a view as floats.
func PeopleRated(rows []domain.Book) []float64 {
	out := make([]float64, len(rows))
	for i, b := range rows {
		out[i] = float64(b.PeopleRated)
	}
	return out
}

// Authors extracts the author column from a view.
func Authors(rows []domain.Book) []string {
	out := make([]string, len(rows))
	for i, b := range rows {
		out[i] = b.Author
	}
	return out
}
