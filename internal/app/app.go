// Package app builds every long-lived component once at startup and hands
// them to the HTTP layer and CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/timmy/contextual/internal/config"
	"github.com/timmy/contextual/internal/emotion"
	"github.com/timmy/contextual/internal/logger"
	"github.com/timmy/contextual/internal/metrics"
	"github.com/timmy/contextual/internal/repository"
	"github.com/timmy/contextual/internal/service"
	"github.com/timmy/contextual/internal/source/tenor"
	"github.com/timmy/contextual/internal/storage"
)

// App is the application context. Fields are set once by New and only
// read afterwards.
type App struct {
	Config     *config.Config
	Metrics    *metrics.Recorder
	Embedder   service.Embedder
	Index      service.VectorIndex
	Tenor      *tenor.Adapter
	Search     *service.SearchService
	Catalog    *emotion.Catalog
	Classifier *emotion.Classifier
	Favorites  *repository.FavoriteRepository

	closers []func() error
}

// Options overrides collaborators, mostly for tests. Nil fields are built
// from configuration.
type Options struct {
	Embedder service.Embedder
	Index    service.VectorIndex
	Metrics  *metrics.Recorder
	Store    storage.ArtifactStore
}

// New wires the application. Missing optional collaborators (embedding
// credentials, Tenor key, classifier model) degrade the service instead of
// failing startup; an unreachable index or database does fail it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg, Metrics: opts.Metrics}
	if a.Metrics == nil {
		a.Metrics = metrics.New(metrics.DefaultConfig())
	}

	ctx = logger.SetComponent(ctx, "app")

	a.Embedder = opts.Embedder
	if a.Embedder == nil {
		emb, err := service.NewEmbedder(&cfg.Embedding)
		if err != nil {
			logger.CtxWarn(ctx, "Embedding provider disabled: error=%v", err)
		} else {
			a.Embedder = emb
			logger.CtxInfo(ctx, "Embedding provider ready: provider=%s, model=%s, dimensions=%d",
				cfg.Embedding.Provider, cfg.Embedding.Model, emb.Dimensions())
		}
	}

	a.Index = opts.Index
	if a.Index == nil {
		idx, err := a.buildIndex(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Index = idx
	}

	a.Tenor = tenor.NewAdapter(&cfg.Tenor)
	a.Search = service.NewSearchService(a.Embedder, a.Index, a.Tenor, a.Metrics, &service.SearchConfig{
		ScoreThreshold: cfg.Search.ScoreThreshold,
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
	})

	if err := a.buildClassifier(ctx, opts.Store); err != nil {
		a.Close()
		return nil, err
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	a.Favorites = repository.NewFavoriteRepository(db)

	return a, nil
}

func (a *App) buildIndex(ctx context.Context) (service.VectorIndex, error) {
	q := a.Config.Qdrant
	if q.InMemory {
		logger.CtxInfo(ctx, "Using in-memory vector index: collection=%s", q.Collection)
		return repository.NewMemoryIndex(q.Collection, q.VectorDimension), nil
	}

	repo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            q.Host,
		Port:            q.Port,
		Collection:      q.Collection,
		APIKey:          q.APIKey,
		UseTLS:          q.UseTLS,
		VectorDimension: q.VectorDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant repository: %w", err)
	}
	a.closers = append(a.closers, repo.Close)

	if err := repo.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	logger.CtxInfo(ctx, "Qdrant collection ready: host=%s, port=%d, collection=%s", q.Host, q.Port, q.Collection)
	return repo, nil
}

func (a *App) buildClassifier(ctx context.Context, store storage.ArtifactStore) error {
	catalog, err := emotion.LoadCatalog(a.Config.Emotions.Path)
	if err != nil {
		return fmt.Errorf("failed to load emotion configuration: %w", err)
	}
	a.Catalog = catalog

	if store == nil {
		store = a.artifactStore()
	}
	model, err := emotion.LoadModel(ctx, store, a.Config.Classifier.ModelPath)
	if err != nil {
		logger.CtxWarn(ctx, "Classifier model unavailable, using anchors only: error=%v", err)
		model = nil
	}
	if model != nil && a.Embedder != nil && model.Dimensions() != a.Embedder.Dimensions() {
		logger.CtxWarn(ctx, "Classifier model expects %d dimensions, embedder produces %d; using anchors only",
			model.Dimensions(), a.Embedder.Dimensions())
		model = nil
	}

	anchors, err := emotion.BuildAnchorCache(ctx, a.Embedder, catalog, emotion.AnchorCandidates(catalog, model), a.Metrics)
	if err != nil {
		logger.CtxWarn(ctx, "Anchor embeddings unavailable: error=%v", err)
		anchors = nil
	}

	th := emotion.DefaultThresholds()
	cc := a.Config.Classifier
	if cc.MinConfidence > 0 {
		th.MinConfidence = cc.MinConfidence
	}
	if cc.TrustThreshold > 0 {
		th.TrustThreshold = cc.TrustThreshold
	}
	if cc.AnchorFloor > 0 {
		th.AnchorFloor = cc.AnchorFloor
	}

	a.Classifier = emotion.NewClassifier(a.Embedder, model, anchors, catalog, th, a.Metrics)
	logger.CtxInfo(ctx, "Classifier ready: mode=%s, anchor_categories=%v", a.Classifier.Mode(), a.Classifier.AnchorCategories())
	return nil
}

// artifactStore routes s3:// locations to S3 when the model lives there.
func (a *App) artifactStore() storage.ArtifactStore {
	if !strings.HasPrefix(a.Config.Classifier.ModelPath, "s3://") {
		return storage.NewRouter(nil)
	}

	sc := a.Config.Storage
	s3, err := storage.NewS3(&storage.S3Config{
		Type:      storage.StorageType(sc.Type),
		Endpoint:  sc.Endpoint,
		AccessKey: sc.AccessKey,
		SecretKey: sc.SecretKey,
		UseSSL:    sc.UseSSL,
		Region:    sc.Region,
	})
	if err != nil {
		logger.Warn("S3 storage unavailable: error=%v", err)
		return storage.NewRouter(nil)
	}
	return storage.NewRouter(s3)
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
