package emotion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/logger"
	"github.com/timmy/contextual/internal/metrics"
	"github.com/timmy/contextual/internal/repository"
	"github.com/timmy/contextual/internal/service"
	"golang.org/x/sync/errgroup"
)

const anchorConcurrency = 4

// AnchorScore is the similarity between a message and one category anchor.
type AnchorScore struct {
	Category domain.Category
	Score    float32
}

// AnchorCache maps categories to the embedding of their joined anchor
// keywords. Built once, then read-only.
type AnchorCache struct {
	order   []domain.Category
	vectors map[domain.Category][]float32
}

// BuildAnchorCache embeds the anchors of every candidate category
// concurrently. Categories without anchors are skipped; the result keeps
// the order of candidates.
func BuildAnchorCache(ctx context.Context, embedder service.Embedder, catalog *Catalog, candidates []domain.Category, recorder *metrics.Recorder) (*AnchorCache, error) {
	cache := &AnchorCache{vectors: make(map[domain.Category][]float32)}
	if embedder == nil || len(candidates) == 0 {
		return cache, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(anchorConcurrency)

	for _, category := range candidates {
		anchors := catalog.Anchors(category)
		if len(anchors) == 0 {
			continue
		}
		text := strings.Join(anchors, " ")

		g.Go(func() error {
			vec, latency, err := embedder.Encode(gctx, text)
			recorder.ObserveEmbedding("anchors", latency)
			if err != nil {
				return fmt.Errorf("failed to embed anchors for %s: %w", category, err)
			}
			mu.Lock()
			cache.vectors[category] = vec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, category := range candidates {
		if _, ok := cache.vectors[category]; ok {
			cache.order = append(cache.order, category)
		}
	}

	logger.With(logger.Fields{logger.FieldCount: len(cache.order)}).
		Info(ctx, "Anchor embeddings ready: categories=%v", cache.order)
	return cache, nil
}

// AnchorCandidates returns the categories the anchor stage may pick: every
// anchored category the model cannot produce, or every anchored category
// when there is no model. Neutral is never a candidate.
func AnchorCandidates(catalog *Catalog, model *Model) []domain.Category {
	var covered map[domain.Category]struct{}
	if model != nil {
		covered = model.Categories()
	}

	var out []domain.Category
	for _, c := range catalog.Categories() {
		if c == domain.CategoryNeutral || len(catalog.Anchors(c)) == 0 {
			continue
		}
		if _, ok := covered[c]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Categories returns the cached categories in candidate order.
func (a *AnchorCache) Categories() []domain.Category {
	if a == nil {
		return nil
	}
	return append([]domain.Category(nil), a.order...)
}

// Len returns the number of cached anchors.
func (a *AnchorCache) Len() int {
	if a == nil {
		return 0
	}
	return len(a.order)
}

// Score computes the cosine similarity of vec against every anchor.
func (a *AnchorCache) Score(vec []float32) []AnchorScore {
	if a == nil {
		return nil
	}
	out := make([]AnchorScore, 0, len(a.order))
	for _, c := range a.order {
		out = append(out, AnchorScore{
			Category: c,
			Score:    repository.CosineSimilarity(vec, a.vectors[c]),
		})
	}
	return out
}
