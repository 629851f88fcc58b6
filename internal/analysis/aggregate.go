package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
)

// Summary holds descriptive statistics in their fixed presentation order.
// Std is the sample standard deviation and is NaN for a single value.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Describe computes descriptive statistics over values, skipping NaN.
// Returns ErrNoData when nothing remains.
func Describe(values []float64) (Summary, error) {
	data := dropNaN(values)
	if len(data) == 0 {
		return Summary{}, errors.NoData("no values to describe")
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, errors.Internal("mean").WithCause(err)
	}
	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		return Summary{}, errors.Internal("std").WithCause(err)
	}
	minV, err := stats.Min(data)
	if err != nil {
		return Summary{}, errors.Internal("min").WithCause(err)
	}
	q1, err := stats.Percentile(data, 25)
	if err != nil {
		return Summary{}, errors.Internal("q1").WithCause(err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, errors.Internal("median").WithCause(err)
	}
	q3, err := stats.Percentile(data, 75)
	if err != nil {
		return Summary{}, errors.Internal("q3").WithCause(err)
	}
	maxV, err := stats.Max(data)
	if err != nil {
		return Summary{}, errors.Internal("max").WithCause(err)
	}

	return Summary{
		Count:  len(data),
		Mean:   mean,
		Std:    std,
		Min:    minV,
		Q1:     q1,
		Median: median,
		Q3:     q3,
		Max:    maxV,
	}, nil
}

// GroupMean is one row of a mean-by-group aggregation.
type GroupMean struct {
	Group string
	Mean  float64
	Count int
}

// MeanByGroup groups rows by groupOf and averages valueOf within each group.
//
// Group membership is exact string equality; missing labels (empty strings)
// and NaN values are skipped, so a group with no remaining values never
// appears. Output is sorted descending by mean; equal means keep
// first-encountered group order. Returns ErrNoData when no group survives.
func MeanByGroup(rows []domain.Book, groupOf func(domain.Book) string, valueOf func(domain.Book) float64) ([]GroupMean, error) {
	type acc struct {
		sum   float64
		count int
	}
	order := make([]string, 0)
	accs := make(map[string]*acc)

	for _, b := range rows {
		g := groupOf(b)
		if g == "" {
			continue
		}
		v := valueOf(b)
		if math.IsNaN(v) {
			continue
		}
		a, ok := accs[g]
		if !ok {
			a = &acc{}
			accs[g] = a
			order = append(order, g)
		}
		a.sum += v
		a.count++
	}

	if len(order) == 0 {
		return nil, errors.NoData("no groups in current selection")
	}

	out := make([]GroupMean, 0, len(order))
	for _, g := range order {
		a := accs[g]
		out = append(out, GroupMean{Group: g, Mean: a.sum / float64(a.count), Count: a.count})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean > out[j].Mean })
	return out, nil
}

// ValueCount is one row of a value-counts aggregation.
type ValueCount struct {
	Value string
	Count int
}

// TopValueCounts counts occurrences of each non-missing value and returns
// the n most frequent, descending by count. Ties keep first-encountered
// order. Returns ErrNoData when nothing was counted.
func TopValueCounts(values []string, n int) ([]ValueCount, error) {
	order := make([]string, 0)
	counts := make(map[string]int)

	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	if len(order) == 0 {
		return nil, errors.NoData("no values in current selection")
	}

	out := make([]ValueCount, 0, len(order))
	for _, v := range order {
		out = append(out, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Column is a named numeric column extracted from a view.
type Column struct {
	Name   string
	Values []float64
}

// Correlation is a symmetric matrix of pairwise Pearson coefficients.
// Cells are NaN where a coefficient is undefined (zero variance or fewer
// than two complete observation pairs).
type Correlation struct {
	Columns []string
	Cells   [][]float64
}

// CorrelationMatrix computes pairwise Pearson correlations over cols.
//
// Fewer than two columns is an ErrInsufficientColumns, which is a distinct
// condition from empty data (ErrNoData); callers report them separately.
// Each pair is computed over its complete observations only, the diagonal
// is exactly 1.0, and column order follows the input.
func CorrelationMatrix(cols []Column) (*Correlation, error) {
	if len(cols) < 2 {
		return nil, errors.InsufficientColumnsf("need at least 2 numeric columns, have %d", len(cols))
	}
	if len(cols[0].Values) == 0 {
		return nil, errors.NoData("no rows to correlate")
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	cells := make([][]float64, len(cols))
	for i := range cells {
		cells[i] = make([]float64, len(cols))
		cells[i][i] = 1.0
	}

	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			r := pearson(cols[i].Values, cols[j].Values)
			cells[i][j] = r
			cells[j][i] = r
		}
	}

	return &Correlation{Columns: names, Cells: cells}, nil
}

// pearson correlates the complete (both non-NaN) observation pairs of two
// columns, NaN when undefined.
func pearson(xs, ys []float64) float64 {
	px := make([]float64, 0, len(xs))
	py := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) < 2 {
		return math.NaN()
	}
	// stats.Pearson reports r=0 for a constant column instead of an error,
	// but a zero-variance column has no defined correlation.
	if isConstant(px) || isConstant(py) {
		return math.NaN()
	}
	r, err := stats.Pearson(px, py)
	if err != nil {
		return math.NaN()
	}
	return r
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
