// Package domain contains the core entities for the book listings dataset.
package domain

import "math"

// Column names as they appear in the source file. The contract with the
// loader is exact-match, case-sensitive.
const (
	ColumnTitle        = "Title"
	ColumnAuthor       = "Author"
	ColumnType         = "Type"
	ColumnMainGenre    = "Main Genre"
	ColumnRating       = "Rating"
	ColumnPeopleRated  = "No. of People rated"
	ColumnPrice        = "Price"
	ColumnPriceOutlier = "Price_outlier"
)

// RequiredColumns must all be present in the source file.
// Title and Price_outlier are optional.
var RequiredColumns = []string{
	ColumnType,
	ColumnMainGenre,
	ColumnAuthor,
	ColumnRating,
	ColumnPeopleRated,
	ColumnPrice,
}

// Book is one row of the dataset.
//
// Missing categorical values are empty strings; missing numeric values are
// NaN. PriceOutlier is only meaningful when the dataset carries the
// Price_outlier column.
type Book struct {
	Title        string  `json:"title,omitempty"`
	Author       string  `json:"author"`
	Type         string  `json:"type"`
	MainGenre    string  `json:"main_genre"`
	Rating       float64 `json:"rating"`
	PeopleRated  int     `json:"people_rated"`
	Price        float64 `json:"price"`
	PriceOutlier bool    `json:"price_outlier,omitempty"`
}

// HasRating reports whether the rating value is present.
func (b Book) HasRating() bool {
	return !math.IsNaN(b.Rating)
}

// HasPrice reports whether the price value is present.
func (b Book) HasPrice() bool {
	return !math.IsNaN(b.Price)
}
