package service

import (
	"context"

	"github.com/shelfstats/shelfstats-server/internal/analysis"
	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/search"
)

// overfetch compensates for hits that the active filter rejects.
const searchOverfetch = 4

// SearchService runs full-text queries against the current snapshot and
// restricts the hits to the filtered view.
type SearchService struct {
	handle *dataset.Handle
	index  *search.Index
	log    *logger.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(handle *dataset.Handle, index *search.Index, log *logger.Logger) *SearchService {
	return &SearchService{
		handle: handle,
		index:  index,
		log:    log,
	}
}

// SearchHit is one match enriched with row data.
type SearchHit struct {
	Row    int     `json:"row"`
	Score  float64 `json:"score"`
	Title  string  `json:"title,omitempty"`
	Author string  `json:"author"`
	Type   string  `json:"type"`
	Genre  string  `json:"genre"`
	Rating Float   `json:"rating"`
	Price  Float   `json:"price"`
}

// SearchResult is the search endpoint payload.
type SearchResult struct {
	Query        string      `json:"query"`
	FilteredRows int         `json:"filtered_rows"`
	Hits         []SearchHit `json:"hits"`
	NoData       bool        `json:"no_data"`
}

// Search queries the index and keeps only hits inside the filtered view.
// The index covers the whole snapshot, so each hit's row is checked
// against the filter rather than re-running the query per filter.
func (s *SearchService) Search(ctx context.Context, q string, limit int, p domain.FilterParams) (*SearchResult, error) {
	if limit <= 0 {
		limit = 25
	}

	snap := s.handle.Snapshot()
	if s.index.SnapshotID() != snap.ID() {
		if err := s.index.Build(snap); err != nil {
			return nil, errors.Internal("rebuild search index").WithCause(err)
		}
	}

	allowed := make(map[int]struct{})
	for _, i := range analysis.ApplyIndices(snap.Rows(), snap.Domains(), p) {
		allowed[i] = struct{}{}
	}

	out := &SearchResult{
		Query:        q,
		FilteredRows: len(allowed),
		Hits:         []SearchHit{},
	}
	if len(allowed) == 0 {
		out.NoData = true
		return out, nil
	}

	res, err := s.index.Search(ctx, q, limit*searchOverfetch)
	if err != nil {
		return nil, errors.Internal("search failed").WithCause(err)
	}

	rows := snap.Rows()
	for _, hit := range res.Hits {
		if _, ok := allowed[hit.Row]; !ok {
			continue
		}
		if hit.Row < 0 || hit.Row >= len(rows) {
			continue
		}
		b := rows[hit.Row]
		out.Hits = append(out.Hits, SearchHit{
			Row:    hit.Row,
			Score:  hit.Score,
			Title:  b.Title,
			Author: b.Author,
			Type:   b.Type,
			Genre:  b.MainGenre,
			Rating: Float(b.Rating),
			Price:  Float(b.Price),
		})
		if len(out.Hits) >= limit {
			break
		}
	}

	return out, nil
}
