package service

import (
	"math"
	"strconv"

	"github.com/shelfstats/shelfstats-server/internal/analysis"
	"github.com/shelfstats/shelfstats-server/internal/domain"
)

// Float marshals like float64 but encodes NaN as JSON null. The analysis
// layer uses NaN for missing and undefined values, which plain float64
// refuses to serialize.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes back to NaN.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// IsMissing reports whether the value encodes as null.
func (f Float) IsMissing() bool {
	return math.IsNaN(float64(f))
}

// BookRow is one dataset row shaped for JSON output.
type BookRow struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author"`
	Type         string `json:"type"`
	MainGenre    string `json:"main_genre"`
	Rating       Float  `json:"rating"`
	PeopleRated  int    `json:"people_rated"`
	Price        Float  `json:"price"`
	PriceOutlier bool   `json:"price_outlier,omitempty"`
}

func toBookRow(b domain.Book) BookRow {
	return BookRow{
		Title:        b.Title,
		Author:       b.Author,
		Type:         b.Type,
		MainGenre:    b.MainGenre,
		Rating:       Float(b.Rating),
		PeopleRated:  b.PeopleRated,
		Price:        Float(b.Price),
		PriceOutlier: b.PriceOutlier,
	}
}

// Summary is the descriptive statistics block shaped for JSON output.
type Summary struct {
	Count  int   `json:"count"`
	Mean   Float `json:"mean"`
	Std    Float `json:"std"`
	Min    Float `json:"min"`
	Q1     Float `json:"q1"`
	Median Float `json:"median"`
	Q3     Float `json:"q3"`
	Max    Float `json:"max"`
}

func toSummary(s analysis.Summary) *Summary {
	return &Summary{
		Count:  s.Count,
		Mean:   Float(s.Mean),
		Std:    Float(s.Std),
		Min:    Float(s.Min),
		Q1:     Float(s.Q1),
		Median: Float(s.Median),
		Q3:     Float(s.Q3),
		Max:    Float(s.Max),
	}
}

// HistogramBin is one histogram bucket shaped for JSON output.
type HistogramBin struct {
	Lo    Float `json:"lo"`
	Hi    Float `json:"hi"`
	Count int   `json:"count"`
}

func toHistogramBins(bins []analysis.Bin) []HistogramBin {
	out := make([]HistogramBin, len(bins))
	for i, b := range bins {
		out[i] = HistogramBin{Lo: Float(b.Lo), Hi: Float(b.Hi), Count: b.Count}
	}
	return out
}

// GroupMean is one grouped-average row shaped for JSON output.
type GroupMean struct {
	Group string `json:"group"`
	Mean  Float  `json:"mean"`
	Count int    `json:"count"`
}

func toGroupMeans(groups []analysis.GroupMean) []GroupMean {
	out := make([]GroupMean, len(groups))
	for i, g := range groups {
		out[i] = GroupMean{Group: g.Group, Mean: Float(g.Mean), Count: g.Count}
	}
	return out
}

// ValueCount is one value-count row shaped for JSON output.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func toValueCounts(counts []analysis.ValueCount) []ValueCount {
	out := make([]ValueCount, len(counts))
	for i, c := range counts {
		out[i] = ValueCount{Value: c.Value, Count: c.Count}
	}
	return out
}
