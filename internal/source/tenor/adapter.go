package tenor

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/contextual/internal/config"
	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/logger"
	"github.com/timmy/contextual/internal/source"
	"golang.org/x/time/rate"
)

const (
	SourceID   = "tenor"
	SourceName = "Tenor"

	defaultBaseURL     = "https://tenor.googleapis.com/v2"
	defaultClientKey   = "contextual_discord_bot"
	defaultMediaFilter = "gif,tinygif,mp4"
	defaultWidth       = 498
	defaultHeight      = 280
)

// Adapter implements source.ContentProvider for the Tenor v2 API.
type Adapter struct {
	client      *resty.Client
	limiter     *rate.Limiter
	apiKey      string
	clientKey   string
	mediaFilter string
	width       int
	height      int
}

// NewAdapter creates a Tenor adapter. A missing API key is allowed; every
// call then returns no results.
func NewAdapter(cfg *config.TenorConfig) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	a := &Adapter{
		client:      client,
		limiter:     limiter,
		apiKey:      cfg.APIKey,
		clientKey:   orDefault(cfg.ClientKey, defaultClientKey),
		mediaFilter: orDefault(cfg.MediaFilter, defaultMediaFilter),
		width:       cfg.PlaceholderWidth,
		height:      cfg.PlaceholderHeight,
	}
	if a.width <= 0 {
		a.width = defaultWidth
	}
	if a.height <= 0 {
		a.height = defaultHeight
	}

	if a.apiKey == "" {
		logger.Warn("TENOR_API_KEY not set, Tenor fallback disabled")
	}
	return a
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GetSourceID returns the unique identifier for this source
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// Enabled reports whether an API key is configured.
func (a *Adapter) Enabled() bool {
	return a.apiKey != ""
}

type response struct {
	Results []source.Item `json:"results"`
	Next    string        `json:"next"`
}

// Search calls /search with the raw query.
func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]source.Item, error) {
	return a.get(ctx, "/search", map[string]string{"q": query}, limit)
}

// Featured calls /featured, Tenor's trending feed.
func (a *Adapter) Featured(ctx context.Context, limit int) ([]source.Item, error) {
	return a.get(ctx, "/featured", nil, limit)
}

func (a *Adapter) get(ctx context.Context, path string, extra map[string]string, limit int) ([]source.Item, error) {
	if a.apiKey == "" {
		return []source.Item{}, nil
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tenor rate limiter: %w", err)
		}
	}

	var out response
	req := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":          a.apiKey,
			"client_key":   a.clientKey,
			"limit":        strconv.Itoa(limit),
			"media_filter": a.mediaFilter,
		}).
		SetResult(&out)
	if extra != nil {
		req.SetQueryParams(extra)
	}

	start := time.Now()
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to call Tenor %s: %w", path, err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logger.With(logger.Fields{logger.FieldStatus: status}).
			Warn(ctx, "Tenor rejected API key")
		return []source.Item{}, nil
	case status != http.StatusOK:
		return nil, fmt.Errorf("Tenor %s error: status %d", path, status)
	}

	logger.With(logger.Fields{
		logger.FieldProvider:   SourceID,
		logger.FieldCount:      len(out.Results),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Tenor %s completed", path)

	if out.Results == nil {
		return []source.Item{}, nil
	}
	return out.Results, nil
}

// Normalize maps a Tenor result onto MediaResult. Missing strings become ""
// and missing dimensions fall back to the placeholder size.
func (a *Adapter) Normalize(item source.Item) (domain.MediaResult, bool) {
	id := item.String("id")
	if id == "" {
		return domain.MediaResult{}, false
	}

	title := item.String("title")
	if title == "" {
		title = item.String("content_description")
	}

	formats := item.Map("media_formats")
	gif := formats.Map("gif")
	tiny := formats.Map("tinygif")
	mp4 := formats.Map("mp4")

	width, height := a.width, a.height
	if dims := gif.Ints("dims"); len(dims) >= 2 && dims[0] > 0 && dims[1] > 0 {
		width, height = dims[0], dims[1]
	}

	return domain.MediaResult{
		ID:         id,
		Title:      title,
		URL:        gif.String("url"),
		PreviewURL: tiny.String("url"),
		MP4URL:     mp4.String("url"),
		Width:      width,
		Height:     height,
		Source:     domain.ProvenanceExternal,
	}, true
}
