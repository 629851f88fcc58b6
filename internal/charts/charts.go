// Package charts renders the dashboard figures as PNG images.
package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/shelfstats/shelfstats-server/internal/analysis"
	"github.com/shelfstats/shelfstats-server/internal/errors"
)

const (
	chartWidth  = 800
	chartHeight = 400
)

var (
	barColor = drawing.Color{R: 68, G: 114, B: 196, A: 255}
	dotColor = drawing.Color{R: 214, G: 96, B: 77, A: 160}
)

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Histogram renders equal-width bins as a bar chart. Bins come from
// analysis.Histogram and are labeled by their lower bound. BarChart has no
// axis name slot, so the title should name the binned quantity.
func Histogram(w io.Writer, title string, bins []analysis.Bin) error {
	if len(bins) == 0 {
		return errors.NoData("no bins to render")
	}

	// Label roughly every fifth bar so the axis stays readable.
	step := len(bins) / 6
	if step < 1 {
		step = 1
	}

	bars := make([]chart.Value, 0, len(bins))
	for i, b := range bins {
		v := chart.Value{Value: float64(b.Count)}
		if i%step == 0 {
			v.Label = fmt.Sprintf("%.1f", b.Lo)
		}
		bars = append(bars, v)
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth(len(bins)),
		BarSpacing: 2,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 24}},
		XAxis:      chart.Style{},
		Bars:       bars,
	}
	for i := range graph.Bars {
		graph.Bars[i].Style = chart.Style{FillColor: barColor, StrokeColor: barColor}
	}

	return graph.Render(chart.PNG, w)
}

// GroupBars renders a mean-by-group aggregation as a bar chart, in the
// order given (callers pass it already sorted descending).
func GroupBars(w io.Writer, title string, groups []analysis.GroupMean) error {
	if len(groups) == 0 {
		return errors.NoData("no groups to render")
	}

	bars := make([]chart.Value, 0, len(groups))
	for _, g := range groups {
		bars = append(bars, chart.Value{
			Value: g.Mean,
			Label: g.Group,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth(len(groups)),
		BarSpacing: 4,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 36}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		Bars:       bars,
	}

	return graph.Render(chart.PNG, w)
}

// CountBars renders a value-counts aggregation as a bar chart.
func CountBars(w io.Writer, title string, counts []analysis.ValueCount) error {
	if len(counts) == 0 {
		return errors.NoData("no counts to render")
	}

	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.Value{
			Value: float64(c.Count),
			Label: c.Value,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth(len(counts)),
		BarSpacing: 4,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 36}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		Bars:       bars,
	}

	return graph.Render(chart.PNG, w)
}

// Scatter renders an x/y point cloud. Pairs with a NaN on either side are
// dropped. logX applies a log10 transform to the x values, dropping
// non-positive points, the way review-count axes are usually displayed.
func Scatter(w io.Writer, title, xLabel, yLabel string, xs, ys []float64, logX bool) error {
	px := make([]float64, 0, len(xs))
	py := make([]float64, 0, len(ys))
	for i := range xs {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		if logX {
			if x <= 0 {
				continue
			}
			x = math.Log10(x)
		}
		px = append(px, x)
		py = append(py, y)
	}
	if len(px) == 0 {
		return errors.NoData("no points to render")
	}
	if len(px) == 1 {
		// go-chart needs a non-degenerate x-range.
		px = append(px, px[0]+1e-6)
		py = append(py, py[0])
	}

	if logX {
		xLabel += " (log10)"
	}

	graph := chart.Chart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 24}},
		XAxis:      chart.XAxis{Name: xLabel},
		YAxis:      chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: px,
				YValues: py,
				Style:   pointStyle(dotColor),
			},
		},
	}

	return graph.Render(chart.PNG, w)
}

// barWidth scales bars down as the count grows so charts keep their width.
func barWidth(n int) int {
	w := (chartWidth - 60) / n
	if w < 3 {
		return 3
	}
	if w > 60 {
		return 60
	}
	return w
}
