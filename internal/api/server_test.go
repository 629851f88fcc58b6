package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstats/shelfstats-server/internal/config"
	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/http/response"
	"github.com/shelfstats/shelfstats-server/internal/logger"
	"github.com/shelfstats/shelfstats-server/internal/ratelimit"
	"github.com/shelfstats/shelfstats-server/internal/search"
	"github.com/shelfstats/shelfstats-server/internal/service"
)

const testCSV = `Title,Author,Main Genre,Type,Price,Rating,No. of People rated,Price_outlier
Book A,Alice,Fiction,Paperback,100,4.0,50,False
Book B,Bob,Fiction,Hardcover,200,4.5,100,False
Book C,Alice,Nonfiction,Paperback,300,2.5,10,True
Book D,Cara,Fiction,Paperback,400,5.0,500,False
Book E,Dan,Nonfiction,Kindle Edition,,,0,False
`

// setupTestServer creates a test server over a small fixture dataset.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))

	log := logger.Discard()

	handle, err := dataset.NewHandle(path, log)
	require.NoError(t, err)

	idx, err := search.New(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	cfg := &config.Config{
		Server:    config.ServerConfig{Name: "Test Server", Port: "0"},
		Analytics: config.AnalyticsConfig{TopAuthors: 10, PriceBins: 5, RatingBins: 5},
	}

	analytics := service.NewAnalyticsService(handle, cfg.Analytics, log)
	searchSvc := service.NewSearchService(handle, idx, log)
	exportSvc := service.NewExportService(handle, log)

	return NewServer(analytics, searchSvc, exportSvc, nil, cfg, log)
}

// doJSON performs a GET and decodes the response envelope.
func doJSON(t *testing.T, s *Server, path string) (int, response.Envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

func dataMap(t *testing.T, env response.Envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "data is %T", env.Data)
	return m
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	data := dataMap(t, env)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, float64(5), data["rows"])
}

func TestDatasetEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/dataset")
	assert.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	data := dataMap(t, env)
	assert.Equal(t, float64(5), data["total_rows"])
	assert.Equal(t, float64(4), data["filtered_rows"])
	assert.Len(t, data["sample"], 4)
}

func TestDatasetEndpointFiltered(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/dataset?genres=Fiction&exclude_outliers=true")
	assert.Equal(t, http.StatusOK, code)

	data := dataMap(t, env)
	assert.Equal(t, float64(3), data["filtered_rows"])
}

func TestDatasetEndpointEmptySelection(t *testing.T) {
	s := setupTestServer(t)

	// types present but empty is an explicit empty selection, not an error.
	code, env := doJSON(t, s, "/api/v1/dataset?types=")
	assert.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	data := dataMap(t, env)
	assert.Equal(t, float64(0), data["filtered_rows"])
	assert.Equal(t, true, data["no_data"])
}

func TestFiltersEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/filters")
	assert.Equal(t, http.StatusOK, code)

	data := dataMap(t, env)
	assert.ElementsMatch(t, []any{"Hardcover", "Kindle Edition", "Paperback"}, data["types"])
	assert.Equal(t, true, data["has_outliers"])
}

func TestPriceStatsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/stats/price")
	assert.Equal(t, http.StatusOK, code)

	data := dataMap(t, env)
	summary, ok := data["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), summary["count"])
	assert.Equal(t, float64(250), summary["mean"])
}

func TestPriceStatsInvalidRating(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/stats/price?rating_min=abc")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestRatingStatsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/stats/ratings?genres=Fiction")
	assert.Equal(t, http.StatusOK, code)

	data := dataMap(t, env)
	summary, ok := data["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4.5), summary["mean"])
}

func TestAuthorStatsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/stats/authors")
	assert.Equal(t, http.StatusOK, code)

	data := dataMap(t, env)
	top, ok := data["top_authors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, top)
	first, ok := top[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", first["value"])
	assert.Equal(t, float64(2), first["count"])
}

func TestCorrelationsEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/correlations")
	assert.Equal(t, http.StatusOK, code)

	data := dataMap(t, env)
	cols, ok := data["columns"].([]any)
	require.True(t, ok)
	assert.Len(t, cols, 3)

	cells, ok := data["cells"].([]any)
	require.True(t, ok)
	require.Len(t, cells, 3)
	row0, ok := cells[0].([]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), row0[0])
}

func TestCorrelationsEmptySelectionIs200(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/correlations?genres=")
	assert.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	data := dataMap(t, env)
	assert.Equal(t, true, data["no_data"])
	assert.Equal(t, false, data["insufficient_columns"])
}

func TestChartEndpoint(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/charts/price-histogram.png", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Greater(t, w.Body.Len(), 4)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
}

func TestChartEndpointUnknownName(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/charts/nope.png")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestSearchEndpoint(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/search?q=alice&genres=Fiction")
	assert.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	data := dataMap(t, env)
	hits, ok := data["hits"].([]any)
	require.True(t, ok)
	require.Len(t, hits, 1)
	hit, ok := hits[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Book A", hit["title"])
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/search")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestExportEndpointCSV(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export?format=csv", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Title,Author"))
}

func TestExportEndpointBadFormat(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, "/api/v1/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestDashboardPage(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "Test Server")
	assert.Contains(t, body, "Book A")
	assert.Contains(t, body, "price-histogram.png")
	assert.Contains(t, body, "Correlations")
}

func TestDashboardPageEmptySelection(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/?types=", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No data for the current selection")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(1, 2)
	defer limiter.Stop()

	handler := RateLimitMiddleware(limiter, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
	req.RemoteAddr = "10.9.9.9:5000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
