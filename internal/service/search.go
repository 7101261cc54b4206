package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/logger"
	"github.com/timmy/contextual/internal/metrics"
	"github.com/timmy/contextual/internal/repository"
	"github.com/timmy/contextual/internal/source"
)

const (
	defaultScoreThreshold = 0.6
	defaultLimit          = 20
	defaultMaxLimit       = 50
)

// VectorIndex is satisfied by repository.QdrantRepository and repository.MemoryIndex.
type VectorIndex interface {
	Upsert(ctx context.Context, vectors [][]float32, payloads []*repository.GifPayload) error
	Search(ctx context.Context, vector []float32, topK int) ([]repository.SearchResult, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (uint64, error)
	Collection() string
}

// SearchConfig holds configuration for search service.
type SearchConfig struct {
	ScoreThreshold float32
	DefaultLimit   int
	MaxLimit       int
}

// SearchService merges vector index hits with content provider fallback
// and writes fallback results back into the index.
type SearchService struct {
	embedder       Embedder
	index          VectorIndex
	provider       source.ContentProvider
	metrics        *metrics.Recorder
	scoreThreshold float32
	defaultLimit   int
	maxLimit       int
	now            func() time.Time
}

// NewSearchService creates a new search service. embedder, index and
// provider may be nil; the corresponding operations then fail or are skipped.
func NewSearchService(
	embedder Embedder,
	index VectorIndex,
	provider source.ContentProvider,
	recorder *metrics.Recorder,
	cfg *SearchConfig,
) *SearchService {
	s := &SearchService{
		embedder:       embedder,
		index:          index,
		provider:       provider,
		metrics:        recorder,
		scoreThreshold: defaultScoreThreshold,
		defaultLimit:   defaultLimit,
		maxLimit:       defaultMaxLimit,
		now:            time.Now,
	}
	if cfg != nil {
		if cfg.ScoreThreshold > 0 {
			s.scoreThreshold = cfg.ScoreThreshold
		}
		if cfg.DefaultLimit > 0 {
			s.defaultLimit = cfg.DefaultLimit
		}
		if cfg.MaxLimit > 0 {
			s.maxLimit = cfg.MaxLimit
		}
	}
	return s
}

// SearchResponse represents the search response.
type SearchResponse struct {
	Results []domain.MediaResult `json:"results"`
	Total   int                  `json:"total"`
	Query   string               `json:"query"`
}

// ClampLimit applies the default and maximum page size.
func (s *SearchService) ClampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// Search returns at most limit results with unique ids. Indexed hits at or
// above the score threshold come first; the content provider fills the
// remainder and whatever it returns is indexed under the query's embedding.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	limit = s.ClampLimit(limit)

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldComponent: "search",
		logger.FieldQuery:     query,
	})
	start := s.now()

	vector, latency, err := s.embedder.Encode(ctx, query)
	s.metrics.ObserveEmbedding("search", latency)
	if err != nil {
		s.metrics.RecordSearch(metrics.OutcomeError, 0)
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, limit)
	if err != nil {
		s.metrics.RecordSearch(metrics.OutcomeError, 0)
		logger.CtxError(ctx, "Vector index search failed: error=%v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	// The same GIF can sit under several query phrasings; only distinct
	// media count towards limit.
	indexed := make([]domain.MediaResult, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		if hit.Payload == nil || hit.Payload.MediaID == "" {
			continue
		}
		if hit.Score < s.scoreThreshold {
			continue
		}
		if _, dup := seen[hit.Payload.MediaID]; dup {
			continue
		}
		seen[hit.Payload.MediaID] = struct{}{}
		indexed = append(indexed, hit.Payload.Media(hit.Score))
	}

	var fallback []domain.MediaResult
	if len(indexed) < limit {
		fallback = s.fetchFallback(ctx, query, limit)
		if len(fallback) > 0 {
			s.indexFallback(ctx, query, vector, fallback)
		}
	}

	results := mergeResults(limit, indexed, fallback)

	outcome := metrics.OutcomeIndexed
	if len(fallback) > 0 {
		outcome = metrics.OutcomeFallback
	}
	s.metrics.RecordSearch(outcome, len(fallback))

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(results),
	}).Info(ctx, "Search completed: indexed=%d, fallback=%d, embed_ms=%d",
		len(indexed), len(fallback), latency.Milliseconds())

	return &SearchResponse{
		Results: results,
		Total:   len(results),
		Query:   query,
	}, nil
}

// fetchFallback asks the content provider for limit items. Provider errors
// are logged and treated as zero results.
func (s *SearchService) fetchFallback(ctx context.Context, query string, limit int) []domain.MediaResult {
	if s.provider == nil {
		return nil
	}

	items, err := s.provider.Search(ctx, query, limit)
	if err != nil {
		logger.CtxWarn(ctx, "Content provider search failed: provider=%s, error=%v", s.provider.GetSourceID(), err)
		return nil
	}
	return s.normalize(items)
}

func (s *SearchService) normalize(items []source.Item) []domain.MediaResult {
	out := make([]domain.MediaResult, 0, len(items))
	for _, item := range items {
		if media, ok := s.provider.Normalize(item); ok {
			out = append(out, media)
		}
	}
	return out
}

// indexFallback upserts every fallback result under the query's embedding.
// Failures never reach the caller.
func (s *SearchService) indexFallback(ctx context.Context, query string, vector []float32, media []domain.MediaResult) {
	now := s.now()
	vectors := make([][]float32, len(media))
	payloads := make([]*repository.GifPayload, len(media))
	for i, m := range media {
		entry := domain.IndexedEntry{
			Vector:    vector,
			Media:     m,
			Query:     query,
			IndexedAt: now,
		}
		vectors[i] = entry.Vector
		payloads[i] = repository.PayloadFromEntry(entry)
	}

	if err := s.index.Upsert(ctx, vectors, payloads); err != nil {
		s.metrics.RecordIndexWriteFailure()
		logger.With(logger.Fields{logger.FieldCount: len(media)}).
			Warn(ctx, "Lazy indexing failed: error=%v", err)
		return
	}
	logger.With(logger.Fields{logger.FieldCount: len(media)}).
		Debug(ctx, "Indexed fallback results")
}

// mergeResults concatenates groups in order, keeps the first occurrence of
// each id and truncates to limit.
func mergeResults(limit int, groups ...[]domain.MediaResult) []domain.MediaResult {
	seen := make(map[string]struct{})
	out := make([]domain.MediaResult, 0, limit)
	for _, group := range groups {
		for _, m := range group {
			if len(out) >= limit {
				return out
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// Featured returns the provider's trending GIFs. Upstream failures yield an
// empty list.
func (s *SearchService) Featured(ctx context.Context, limit int) ([]domain.MediaResult, error) {
	limit = s.ClampLimit(limit)
	if s.provider == nil {
		return []domain.MediaResult{}, nil
	}

	items, err := s.provider.Featured(ctx, limit)
	if err != nil {
		logger.CtxWarn(ctx, "Content provider featured failed: provider=%s, error=%v", s.provider.GetSourceID(), err)
		return []domain.MediaResult{}, nil
	}
	return mergeResults(limit, s.normalize(items)), nil
}

// Reset drops and recreates the index collection. Destructive.
func (s *SearchService) Reset(ctx context.Context) (string, error) {
	if s.index == nil {
		return "", domain.ErrIndexUnavailable
	}
	if err := s.index.Reset(ctx); err != nil {
		return "", fmt.Errorf("failed to reset index: %w", err)
	}
	logger.CtxWarn(ctx, "Vector index reset: collection=%s", s.index.Collection())
	return s.index.Collection(), nil
}

// IndexStats describes the vector index.
type IndexStats struct {
	Collection string `json:"collection"`
	Points     uint64 `json:"points"`
}

// Stats returns the collection name and point count.
func (s *SearchService) Stats(ctx context.Context) (*IndexStats, error) {
	if s.index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	n, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return &IndexStats{Collection: s.index.Collection(), Points: n}, nil
}

// Ready reports which collaborators are configured.
func (s *SearchService) Ready() map[string]bool {
	return map[string]bool{
		"embedding": s.embedder != nil,
		"index":     s.index != nil,
		"provider":  s.provider != nil,
	}
}
