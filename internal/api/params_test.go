package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterParamsAbsentVsEmpty(t *testing.T) {
	// Absent parameters stay nil: the filter falls back to default-all.
	r := httptest.NewRequest("GET", "/api/v1/dataset", nil)
	p, err := parseFilterParams(r)
	require.NoError(t, err)
	assert.Nil(t, p.Types)
	assert.Nil(t, p.Genres)
	assert.Nil(t, p.RatingMin)
	assert.Nil(t, p.RatingMax)
	assert.False(t, p.ExcludeOutliers)

	// Present-but-empty parameters become empty non-nil slices: a
	// deliberate empty selection.
	r = httptest.NewRequest("GET", "/api/v1/dataset?types=&genres=", nil)
	p, err = parseFilterParams(r)
	require.NoError(t, err)
	require.NotNil(t, p.Types)
	require.NotNil(t, p.Genres)
	assert.Empty(t, p.Types)
	assert.Empty(t, p.Genres)
}

func TestParseFilterParamsRepeatedAndCommaSeparated(t *testing.T) {
	r := httptest.NewRequest("GET", "/?types=Paperback&types=Hardcover,Kindle%20Edition", nil)
	p, err := parseFilterParams(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paperback", "Hardcover", "Kindle Edition"}, p.Types)
}

func TestParseFilterParamsRatingBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/?rating_min=3.5&rating_max=4.8", nil)
	p, err := parseFilterParams(r)
	require.NoError(t, err)
	require.NotNil(t, p.RatingMin)
	require.NotNil(t, p.RatingMax)
	assert.InDelta(t, 3.5, *p.RatingMin, 1e-9)
	assert.InDelta(t, 4.8, *p.RatingMax, 1e-9)
}

func TestParseFilterParamsInvertedRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/?rating_min=5&rating_max=1", nil)
	_, err := parseFilterParams(r)
	assert.Error(t, err)
}

func TestParseFilterParamsBadNumber(t *testing.T) {
	r := httptest.NewRequest("GET", "/?rating_max=high", nil)
	_, err := parseFilterParams(r)
	assert.Error(t, err)
}

func TestParseBoolSpellings(t *testing.T) {
	for _, raw := range []string{"true", "1", "yes", "on", "TRUE"} {
		r := httptest.NewRequest("GET", "/?exclude_outliers="+raw, nil)
		p, err := parseFilterParams(r)
		require.NoError(t, err)
		assert.True(t, p.ExcludeOutliers, raw)
	}

	r := httptest.NewRequest("GET", "/?exclude_outliers=false", nil)
	p, err := parseFilterParams(r)
	require.NoError(t, err)
	assert.False(t, p.ExcludeOutliers)
}
