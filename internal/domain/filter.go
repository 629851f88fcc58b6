package domain

// FilterParams holds the user-selected filter constraints. All predicates
// are combined with logical AND.
//
// Nil slices mean "not provided" and fall back to the dataset-derived
// default (every distinct non-missing value). An empty non-nil slice is a
// deliberate empty selection and matches nothing. The same convention
// applies to the rating bounds via nil pointers.
type FilterParams struct {
	Types           []string `json:"types"`
	Genres          []string `json:"genres"`
	RatingMin       *float64 `json:"rating_min,omitempty"`
	RatingMax       *float64 `json:"rating_max,omitempty"`
	ExcludeOutliers bool     `json:"exclude_outliers"`
}

// FilterDomains describes the selectable values and derived defaults for the
// sidebar controls. Candidate values are built from non-missing values only
// and sorted ascending; the rating bounds span the whole dataset.
type FilterDomains struct {
	Types       []string `json:"types"`
	Genres      []string `json:"genres"`
	RatingMin   float64  `json:"rating_min"`
	RatingMax   float64  `json:"rating_max"`
	HasOutliers bool     `json:"has_outliers"`
}
