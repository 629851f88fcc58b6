package analysis

import (
	"math"

	"github.com/shelfstats/shelfstats-server/internal/errors"
)

// Bin is one equal-width histogram bucket. Lo is inclusive; Hi is exclusive
// except for the last bin, which also includes the maximum.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// Histogram buckets the non-NaN values into bins equal-width intervals over
// [min, max]. A degenerate span (all values equal) collapses to a single
// bin. Returns ErrNoData when nothing remains after dropping NaN.
func Histogram(values []float64, bins int) ([]Bin, error) {
	data := dropNaN(values)
	if len(data) == 0 {
		return nil, errors.NoData("no values to bucket")
	}
	if bins < 1 {
		return nil, errors.Validationf("bin count must be positive, got %d", bins)
	}

	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(data)}}, nil
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi

	for _, v := range data {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}
