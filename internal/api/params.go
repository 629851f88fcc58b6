package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
)

// Query parameter names for the filter controls.
const (
	paramTypes           = "types"
	paramGenres          = "genres"
	paramRatingMin       = "rating_min"
	paramRatingMax       = "rating_max"
	paramExcludeOutliers = "exclude_outliers"
)

// parseFilterParams decodes the filter controls from the query string.
//
// Multi-select parameters are repeatable and may also hold comma-separated
// lists. A parameter that is absent stays nil (default-all); a parameter
// that is present with no usable values becomes an empty non-nil slice,
// which is a deliberate empty selection.
func parseFilterParams(r *http.Request) (domain.FilterParams, error) {
	q := r.URL.Query()
	var p domain.FilterParams

	p.Types = parseMultiValue(q, paramTypes)
	p.Genres = parseMultiValue(q, paramGenres)

	min, err := parseFloatParam(q, paramRatingMin)
	if err != nil {
		return p, err
	}
	p.RatingMin = min

	max, err := parseFloatParam(q, paramRatingMax)
	if err != nil {
		return p, err
	}
	p.RatingMax = max

	if p.RatingMin != nil && p.RatingMax != nil && *p.RatingMin > *p.RatingMax {
		return p, errors.Validationf("%s must not exceed %s", paramRatingMin, paramRatingMax)
	}

	p.ExcludeOutliers = parseBoolParam(q, paramExcludeOutliers)

	return p, nil
}

// parseMultiValue returns nil when the key is absent, otherwise the
// collected non-empty values (possibly zero of them).
func parseMultiValue(q url.Values, key string) []string {
	raw, present := q[key]
	if !present {
		return nil
	}

	values := make([]string, 0, len(raw))
	for _, chunk := range raw {
		for v := range strings.SplitSeq(chunk, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func parseFloatParam(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Validationf("%s must be a number, got %q", key, raw)
	}
	return &v, nil
}

func parseBoolParam(q url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(q.Get(key))) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// parseLimitParam returns the positive limit or the fallback.
func parseLimitParam(q url.Values, key string, fallback int) int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
