package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstats/shelfstats-server/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func sampleRows() []domain.Book {
	return []domain.Book{
		{Author: "A", Type: "Fiction", MainGenre: "Fantasy", Rating: 4.0, PeopleRated: 100, Price: 10},
		{Author: "B", Type: "Fiction", MainGenre: "Fantasy", Rating: 4.5, PeopleRated: 200, Price: 12},
		{Author: "C", Type: "Nonfiction", MainGenre: "History", Rating: 3.0, PeopleRated: 50, Price: 20},
		{Author: "D", Type: "Fiction", MainGenre: "History", Rating: 5.0, PeopleRated: 10, Price: 8, PriceOutlier: true},
		{Author: "E", Type: "Nonfiction", MainGenre: "Fantasy", Rating: 2.0, PeopleRated: 5, Price: 30},
	}
}

func sampleDomains() domain.FilterDomains {
	return domain.FilterDomains{
		Types:       []string{"Fiction", "Nonfiction"},
		Genres:      []string{"Fantasy", "History"},
		RatingMin:   2.0,
		RatingMax:   5.0,
		HasOutliers: true,
	}
}

func TestApply_DefaultsKeepEverything(t *testing.T) {
	got := Apply(sampleRows(), sampleDomains(), domain.FilterParams{})
	assert.Len(t, got, 5)
}

func TestApply_ConjunctionAndOrder(t *testing.T) {
	// The worked example: five rows, keep Fiction with rating in [4, 5].
	rows := []domain.Book{
		{Type: "Fiction", MainGenre: "G", Rating: 4.0},
		{Type: "Fiction", MainGenre: "G", Rating: 4.5},
		{Type: "Nonfiction", MainGenre: "G", Rating: 3.0},
		{Type: "Fiction", MainGenre: "G", Rating: 5.0},
		{Type: "Nonfiction", MainGenre: "G", Rating: 2.0},
	}
	domains := domain.FilterDomains{
		Types:     []string{"Fiction", "Nonfiction"},
		Genres:    []string{"G"},
		RatingMin: 2.0,
		RatingMax: 5.0,
	}

	got := Apply(rows, domains, domain.FilterParams{
		Types:     []string{"Fiction"},
		RatingMin: ptr(4.0),
		RatingMax: ptr(5.0),
	})

	require.Len(t, got, 3)
	// Source order preserved, bounds inclusive on both ends.
	assert.InDelta(t, 4.0, got[0].Rating, 1e-9)
	assert.InDelta(t, 4.5, got[1].Rating, 1e-9)
	assert.InDelta(t, 5.0, got[2].Rating, 1e-9)
}

func TestApply_EmptySelectionMatchesNothing(t *testing.T) {
	got := Apply(sampleRows(), sampleDomains(), domain.FilterParams{Types: []string{}})
	assert.Empty(t, got)

	got = Apply(sampleRows(), sampleDomains(), domain.FilterParams{Genres: []string{}})
	assert.Empty(t, got)
}

func TestApply_ExcludeOutliers(t *testing.T) {
	got := Apply(sampleRows(), sampleDomains(), domain.FilterParams{ExcludeOutliers: true})
	require.Len(t, got, 4)
	for _, b := range got {
		assert.False(t, b.PriceOutlier)
	}
}

func TestApply_ExcludeOutliersNoopWithoutColumn(t *testing.T) {
	domains := sampleDomains()
	domains.HasOutliers = false

	// The flag is a no-op when the column is absent, even for rows that
	// happen to carry a stored true.
	got := Apply(sampleRows(), domains, domain.FilterParams{ExcludeOutliers: true})
	assert.Len(t, got, 5)
}

func TestApply_MissingValuesNeverMatchDefaults(t *testing.T) {
	rows := append(sampleRows(), domain.Book{Author: "X", Type: "", MainGenre: "Fantasy", Rating: 4.0})
	rows = append(rows, domain.Book{Author: "Y", Type: "Fiction", MainGenre: "Fantasy", Rating: math.NaN()})

	got := Apply(rows, sampleDomains(), domain.FilterParams{})
	assert.Len(t, got, 5)
}

func TestApply_Idempotent(t *testing.T) {
	p := domain.FilterParams{Types: []string{"Fiction"}, RatingMin: ptr(4.0)}
	once := Apply(sampleRows(), sampleDomains(), p)
	twice := Apply(once, sampleDomains(), p)
	assert.Equal(t, once, twice)
}

func TestApply_ReturnsIndependentCopy(t *testing.T) {
	rows := sampleRows()
	got := Apply(rows, sampleDomains(), domain.FilterParams{})
	require.Len(t, got, len(rows))

	got[0].Author = "mutated"
	assert.Equal(t, "A", rows[0].Author)
}
