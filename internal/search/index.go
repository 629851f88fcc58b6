// Package search provides an in-memory full-text index over the loaded
// dataset. Documents are keyed by source row index so hits can be
// intersected with a filtered view of the same snapshot.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/logger"
)

const indexBatchSize = 500

// Index wraps a memory-only Bleve index over one dataset snapshot.
type Index struct {
	mu         sync.RWMutex
	index      bleve.Index
	snapshotID string
	log        *logger.Logger
}

// New creates an empty in-memory index.
func New(log *logger.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}

	return &Index{
		index: idx,
		log:   log,
	}, nil
}

// document is the shape indexed per row.
type document struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Type      string `json:"type"`
	MainGenre string `json:"main_genre"`
}

// Build indexes every row of the snapshot, replacing whatever was
// indexed before. Documents use the row index as their ID.
func (s *Index) Build(snap *dataset.Snapshot) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create search index: %w", err)
	}

	start := time.Now()
	rows := snap.Rows()

	batch := idx.NewBatch()
	for i, b := range rows {
		doc := document{
			Title:     b.Title,
			Author:    b.Author,
			Type:      b.Type,
			MainGenre: b.MainGenre,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return fmt.Errorf("index row %d: %w", i, err)
		}

		if batch.Size() >= indexBatchSize {
			if err := idx.Batch(batch); err != nil {
				return fmt.Errorf("flush index batch: %w", err)
			}
			batch = idx.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return fmt.Errorf("flush index batch: %w", err)
		}
	}

	s.mu.Lock()
	old := s.index
	s.index = idx
	s.snapshotID = snap.ID()
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	s.log.Info("search index built",
		"snapshot_id", snap.ID(),
		"documents", len(rows),
		"duration", time.Since(start),
	)

	return nil
}

// SnapshotID reports which snapshot the current index was built from.
func (s *Index) SnapshotID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotID
}

// DocumentCount returns the number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases the underlying index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}

// Hit is a single search match resolved back to its source row.
type Hit struct {
	Row    int     `json:"row"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
}

// Result carries the hits for one query.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Search runs a full-text query over title and author, with fuzzy and
// prefix fallbacks for typo tolerance and autocomplete.
func (s *Index) Search(ctx context.Context, q string, limit int) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 25
	}

	searchQuery := buildBookQuery(q)
	req := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	req.Fields = []string{"title", "author"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  q,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		row, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		h := Hit{Row: row, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildBookQuery matches titles first, then authors, then genres, with
// a fuzzy variant on each text field for one-edit typos.
func buildBookQuery(q string) query.Query {
	if strings.TrimSpace(q) == "" {
		return bleve.NewMatchNoneQuery()
	}

	var queries []query.Query

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	queries = append(queries, titleMatch)

	authorMatch := bleve.NewMatchQuery(q)
	authorMatch.SetField("author")
	authorMatch.SetBoost(2.0)
	queries = append(queries, authorMatch)

	genreMatch := bleve.NewMatchQuery(q)
	genreMatch.SetField("main_genre")
	queries = append(queries, genreMatch)

	titleFuzzy := bleve.NewFuzzyQuery(q)
	titleFuzzy.SetFuzziness(1)
	titleFuzzy.SetField("title")
	titleFuzzy.SetBoost(0.8)
	queries = append(queries, titleFuzzy)

	authorFuzzy := bleve.NewFuzzyQuery(q)
	authorFuzzy.SetFuzziness(1)
	authorFuzzy.SetField("author")
	authorFuzzy.SetBoost(0.6)
	queries = append(queries, authorFuzzy)

	if len(q) >= 2 {
		titlePrefix := bleve.NewPrefixQuery(strings.ToLower(q))
		titlePrefix.SetField("title")
		titlePrefix.SetBoost(0.5)
		queries = append(queries, titlePrefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
