// Package dataset loads the book listings file into an immutable in-memory
// snapshot and derives the selectable filter domains from it.
package dataset

import (
	"math"
	"sort"

	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/id"
)

// Snapshot is the dataset as loaded from the source file. It is immutable
// once built; a reload produces a new snapshot with a new ID rather than
// mutating an existing one.
type Snapshot struct {
	id          string
	rows        []domain.Book
	columns     []string
	hasOutliers bool
	hasTitle    bool
	domains     domain.FilterDomains
}

// NewSnapshot builds a snapshot from already-parsed rows and derives the
// filter domains. Load is the usual entry point; this is exported for
// callers that assemble rows themselves.
func NewSnapshot(rows []domain.Book, columns []string, hasOutliers, hasTitle bool) *Snapshot {
	return &Snapshot{
		id:          id.MustGenerate(id.PrefixSnapshot),
		rows:        rows,
		columns:     columns,
		hasOutliers: hasOutliers,
		hasTitle:    hasTitle,
		domains:     deriveDomains(rows, hasOutliers),
	}
}

// ID returns the snapshot identifier, regenerated on every load.
func (s *Snapshot) ID() string { return s.id }

// Rows returns the dataset rows in source order. Callers must treat the
// returned slice as read-only; filtered views are always fresh copies.
func (s *Snapshot) Rows() []domain.Book { return s.rows }

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.rows) }

// Columns returns the column names in source order.
func (s *Snapshot) Columns() []string { return s.columns }

// HasOutliers reports whether the source carried the Price_outlier column.
// When it did not, outlier exclusion is a no-op.
func (s *Snapshot) HasOutliers() bool { return s.hasOutliers }

// HasTitle reports whether the source carried the Title column.
func (s *Snapshot) HasTitle() bool { return s.hasTitle }

// Domains returns the selectable filter values and derived defaults.
func (s *Snapshot) Domains() domain.FilterDomains { return s.domains }

// deriveDomains builds the candidate domains for the sidebar controls from
// non-missing values only. Rows with missing Type, Main Genre, or Rating
// stay in the dataset; they just contribute nothing here.
func deriveDomains(rows []domain.Book, hasOutliers bool) domain.FilterDomains {
	typeSet := make(map[string]struct{})
	genreSet := make(map[string]struct{})
	ratingMin := math.NaN()
	ratingMax := math.NaN()

	for _, b := range rows {
		if b.Type != "" {
			typeSet[b.Type] = struct{}{}
		}
		if b.MainGenre != "" {
			genreSet[b.MainGenre] = struct{}{}
		}
		if b.HasRating() {
			if math.IsNaN(ratingMin) || b.Rating < ratingMin {
				ratingMin = b.Rating
			}
			if math.IsNaN(ratingMax) || b.Rating > ratingMax {
				ratingMax = b.Rating
			}
		}
	}

	return domain.FilterDomains{
		Types:       sortedKeys(typeSet),
		Genres:      sortedKeys(genreSet),
		RatingMin:   ratingMin,
		RatingMax:   ratingMax,
		HasOutliers: hasOutliers,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
