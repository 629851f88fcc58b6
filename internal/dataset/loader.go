package dataset

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
)

// missingMarkers are cell values treated as missing on top of empty cells.
var missingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null"}

// Load reads the delimited source file at path and builds a snapshot.
//
// All columns are read as strings and parsed explicitly so that missing and
// malformed numeric cells degrade to NaN instead of failing the whole load.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path) //#nosec G304 -- dataset path comes from config
	if err != nil {
		return nil, errors.NotFoundf("dataset file %q not found", path).WithCause(err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingMarkers),
	)
	if df.Err != nil {
		return nil, errors.Internalf("read dataset %q", path).WithCause(df.Err)
	}

	columns := df.Names()
	for _, required := range domain.RequiredColumns {
		if !slices.Contains(columns, required) {
			return nil, errors.Validationf("dataset is missing required column %q", required)
		}
	}

	hasOutliers := slices.Contains(columns, domain.ColumnPriceOutlier)
	hasTitle := slices.Contains(columns, domain.ColumnTitle)

	typeCol := df.Col(domain.ColumnType)
	genreCol := df.Col(domain.ColumnMainGenre)
	authorCol := df.Col(domain.ColumnAuthor)
	ratingCol := df.Col(domain.ColumnRating)
	peopleCol := df.Col(domain.ColumnPeopleRated)
	priceCol := df.Col(domain.ColumnPrice)

	var titleCol, outlierCol series.Series
	if hasTitle {
		titleCol = df.Col(domain.ColumnTitle)
	}
	if hasOutliers {
		outlierCol = df.Col(domain.ColumnPriceOutlier)
	}

	rows := make([]domain.Book, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		b := domain.Book{
			Type:        cellString(typeCol, i),
			MainGenre:   cellString(genreCol, i),
			Author:      cellString(authorCol, i),
			Rating:      cellFloat(ratingCol, i),
			PeopleRated: cellInt(peopleCol, i),
			Price:       cellFloat(priceCol, i),
		}
		if hasTitle {
			b.Title = cellString(titleCol, i)
		}
		if hasOutliers {
			b.PriceOutlier = cellBool(outlierCol, i)
		}
		rows = append(rows, b)
	}

	return NewSnapshot(rows, columns, hasOutliers, hasTitle), nil
}

// cellString returns the trimmed cell value, or "" when missing.
func cellString(s series.Series, i int) string {
	e := s.Elem(i)
	if e.IsNA() {
		return ""
	}
	return strings.TrimSpace(e.String())
}

// cellFloat parses a float cell, returning NaN when missing or malformed.
func cellFloat(s series.Series, i int) float64 {
	raw := cellString(s, i)
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// cellInt parses an integer cell, tolerating thousands separators.
// Missing or malformed cells become 0.
func cellInt(s series.Series, i int) int {
	raw := strings.ReplaceAll(cellString(s, i), ",", "")
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		// Some exports store counts as floats ("1234.0").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return v
}

// cellBool parses a boolean cell. Accepts Go and pandas spellings.
func cellBool(s series.Series, i int) bool {
	switch strings.ToLower(cellString(s, i)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// describeShape is a convenience for log messages.
func describeShape(s *Snapshot) string {
	return fmt.Sprintf("%d rows x %d columns", s.Len(), len(s.Columns()))
}
