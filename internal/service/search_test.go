package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/search"
)

func newTestSearch(t *testing.T) *SearchService {
	t.Helper()

	handle := newTestHandle(t)
	idx, err := search.New(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	return NewSearchService(handle, idx, logger.Discard())
}

func TestSearchBuildsIndexLazily(t *testing.T) {
	svc := newTestSearch(t)

	// The index starts empty; the first query must build it from the
	// current snapshot.
	out, err := svc.Search(context.Background(), "alice", 10, domain.FilterParams{})
	require.NoError(t, err)

	require.Len(t, out.Hits, 2)
	for _, h := range out.Hits {
		assert.Equal(t, "Alice", h.Author)
	}
}

func TestSearchRespectsFilter(t *testing.T) {
	svc := newTestSearch(t)

	p := domain.FilterParams{Genres: []string{"Fiction"}}
	out, err := svc.Search(context.Background(), "alice", 10, p)
	require.NoError(t, err)

	// Book C is by Alice but Nonfiction, so only Book A remains.
	require.Len(t, out.Hits, 1)
	assert.Equal(t, 0, out.Hits[0].Row)
	assert.Equal(t, "Book A", out.Hits[0].Title)
	assert.Equal(t, "Fiction", out.Hits[0].Genre)
}

func TestSearchEmptySelection(t *testing.T) {
	svc := newTestSearch(t)

	out, err := svc.Search(context.Background(), "alice", 10, domain.FilterParams{Types: []string{}})
	require.NoError(t, err)

	assert.True(t, out.NoData)
	assert.Empty(t, out.Hits)
	assert.Equal(t, 0, out.FilteredRows)
}

func TestSearchLimit(t *testing.T) {
	svc := newTestSearch(t)

	out, err := svc.Search(context.Background(), "book", 1, domain.FilterParams{})
	require.NoError(t, err)

	assert.Len(t, out.Hits, 1)
}
