package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/contextual/internal/app"
	"github.com/timmy/contextual/internal/config"
)

type keywordEmbedder struct{}

// Encode maps text onto three axes: coding, waiting, everything else.
func (keywordEmbedder) Encode(_ context.Context, text string) ([]float32, time.Duration, error) {
	switch {
	case strings.Contains(text, "code"), strings.Contains(text, "deploy"):
		return []float32{1, 0, 0}, time.Millisecond, nil
	case strings.Contains(text, "wait"):
		return []float32{0, 1, 0}, time.Millisecond, nil
	}
	return []float32{0, 0, 1}, time.Millisecond, nil
}

func (keywordEmbedder) Dimensions() int { return 3 }

const tenorBody = `{"results":[
 {"id":"A","title":"a","media_formats":{"gif":{"url":"https://t/a.gif","dims":[100,50]}}},
 {"id":"B","content_description":"b"},
 {"id":"C"}
]}`

func newTestRouter(t *testing.T, opts app.Options) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tenorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tenorBody))
	}))
	t.Cleanup(tenorSrv.Close)

	dir := t.TempDir()
	emotions := filepath.Join(dir, "emotions.yaml")
	require.NoError(t, os.WriteFile(emotions, []byte(`
categories:
  coding:
    anchors: [code]
    suggestions: [hacker typing, it works]
  waiting:
    anchors: [wait]
    suggestions: [tapping fingers]
trending: [vibing, cat]
`), 0o644))

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test", CORS: config.CORSConfig{AllowAllOrigins: true}},
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", AutoMigrate: true, MaxOpenConns: 1},
		Qdrant:    config.QdrantConfig{Collection: "gifs", VectorDimension: 3, InMemory: true},
		Tenor:     config.TenorConfig{APIKey: "k", BaseURL: tenorSrv.URL},
		Search:    config.SearchConfig{ScoreThreshold: 0.6, DefaultLimit: 20, MaxLimit: 50},
		Emotions:  config.EmotionsConfig{Path: emotions},
	}

	a, err := app.New(context.Background(), cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return SetupRouter(a, nil), a
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSearchEndpoint(t *testing.T) {
	r, a := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	w := do(r, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "deploy done", "limit": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "deploy done", body["query"])
	assert.EqualValues(t, 3, body["total"])
	results := body["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "A", first["id"])
	assert.Equal(t, "external", first["source"])
	assert.EqualValues(t, 100, first["width"])

	n, err := a.Index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSearchEndpoint_Errors(t *testing.T) {
	r, _ := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	w := do(r, http.MethodPost, "/api/v1/search", map[string]interface{}{"limit": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "x", "limit": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	noEmbed, _ := newTestRouter(t, app.Options{})
	w = do(noEmbed, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestContextEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	w := do(r, http.MethodPost, "/api/v1/context", map[string]interface{}{"messages": []string{"hi", "my code is broken"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "coding", body["category"])
	assert.InDelta(t, 1.0, body["confidence"], 1e-6)
	assert.Equal(t, []interface{}{"hacker typing", "it works"}, body["suggestions"])

	w = do(r, http.MethodPost, "/api/v1/context", map[string]interface{}{"messages": []string{}})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "neutral", body["category"])
	assert.EqualValues(t, 0, body["confidence"])
	assert.Equal(t, []interface{}{}, body["suggestions"])

	noEmbed, _ := newTestRouter(t, app.Options{})
	w = do(noEmbed, http.MethodPost, "/api/v1/context", map[string]interface{}{"messages": []string{"hello"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTrendingEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	w := do(r, http.MethodGet, "/api/v1/trending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"vibing", "cat"}, decode(t, w)["suggestions"])

	w = do(r, http.MethodGet, "/api/v1/trending?category=Waiting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "waiting", body["category"])
	assert.Equal(t, []interface{}{"tapping fingers"}, body["suggestions"])

	w = do(r, http.MethodGet, "/api/v1/trending?category=unknown", nil)
	assert.Equal(t, []interface{}{}, decode(t, w)["suggestions"])

	w = do(r, http.MethodGet, "/api/v1/trending/gifs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])

	w = do(r, http.MethodGet, "/api/v1/trending/gifs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	do(r, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "deploy", "limit": 5})

	w := do(r, http.MethodGet, "/api/v1/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["points"])
	assert.Equal(t, "anchors", body["classifier_mode"])

	w = do(r, http.MethodPost, "/api/v1/admin/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "reset", "collection": "gifs"}, decode(t, w))

	w = do(r, http.MethodGet, "/api/v1/admin/stats", nil)
	assert.EqualValues(t, 0, decode(t, w)["points"])
}

func TestFavoriteEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	w := do(r, http.MethodPost, "/api/v1/favorites", map[string]interface{}{"id": "A", "title": "a", "url": "https://t/a.gif"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "A", decode(t, w)["media_id"])

	w = do(r, http.MethodPost, "/api/v1/favorites", map[string]interface{}{"title": "no id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	for _, query := range []string{"?limit=abc", "?limit=0", "?offset=-1", "?offset=x"} {
		w = do(r, http.MethodGet, "/api/v1/favorites"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}

	w = do(r, http.MethodDelete, "/api/v1/favorites/A", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/favorites/A", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t, app.Options{Embedder: keywordEmbedder{}})

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contextual_http_request_duration_seconds")
}
