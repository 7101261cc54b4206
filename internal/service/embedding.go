package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/timmy/contextual/internal/config"
)

const (
	jinaEndpoint = "https://api.jina.ai/v1/embeddings"
)

// Embedder turns text into a fixed-size vector. The returned duration is
// the wall time spent inside the provider.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float32, time.Duration, error)
	Dimensions() int
}

// NewEmbedder builds the provider named by cfg.Provider.
func NewEmbedder(cfg *config.EmbeddingConfig) (Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "jina":
		return NewJinaEmbedder(cfg), nil
	case "openai-compatible":
		return NewOpenAIEmbedder(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// JinaEmbedder calls the Jina embeddings API.
type JinaEmbedder struct {
	client     *resty.Client
	endpoint   string
	model      string
	dimensions int
}

// NewJinaEmbedder creates a Jina embedder. BaseURL overrides the public endpoint.
func NewJinaEmbedder(cfg *config.EmbeddingConfig) *JinaEmbedder {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	endpoint := jinaEndpoint
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}

	return &JinaEmbedder{
		client:     client,
		endpoint:   endpoint,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

type jinaRequest struct {
	Model         string   `json:"model"`
	Task          string   `json:"task,omitempty"`
	Dimensions    int      `json:"dimensions,omitempty"`
	Input         []string `json:"input"`
	EmbeddingType string   `json:"embedding_type,omitempty"`
}

type jinaResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// Dimensions returns the configured vector size.
func (e *JinaEmbedder) Dimensions() int {
	return e.dimensions
}

// Encode implements Embedder.
func (e *JinaEmbedder) Encode(ctx context.Context, text string) ([]float32, time.Duration, error) {
	start := time.Now()

	req := jinaRequest{
		Model:         e.model,
		Task:          "retrieval.query",
		Dimensions:    e.dimensions,
		Input:         []string{text},
		EmbeddingType: "float",
	}

	var resp jinaResponse
	httpResp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(e.endpoint)
	elapsed := time.Since(start)

	if err != nil {
		return nil, elapsed, fmt.Errorf("failed to call Jina API: %w", err)
	}
	if httpResp.StatusCode() != 200 {
		if resp.Detail != "" {
			return nil, elapsed, fmt.Errorf("Jina API error: %s", resp.Detail)
		}
		return nil, elapsed, fmt.Errorf("Jina API error: status %d", httpResp.StatusCode())
	}
	if len(resp.Data) == 0 {
		return nil, elapsed, errors.New("no embedding returned")
	}

	return checkDimensions(resp.Data[0].Embedding, e.dimensions, elapsed)
}

// OpenAIEmbedder talks to any OpenAI-compatible /embeddings endpoint
// (OpenAI, text-embeddings-inference, Ollama, vLLM).
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
}

// NewOpenAIEmbedder creates an OpenAI-compatible embedder.
func NewOpenAIEmbedder(cfg *config.EmbeddingConfig) *OpenAIEmbedder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
	}
}

// Dimensions returns the configured vector size.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Encode implements Embedder.
func (e *OpenAIEmbedder) Encode(ctx context.Context, text string) ([]float32, time.Duration, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, elapsed, errors.New("empty embedding response")
	}

	return checkDimensions(resp.Data[0].Embedding, e.dimensions, elapsed)
}

func checkDimensions(vec []float32, want int, elapsed time.Duration) ([]float32, time.Duration, error) {
	if want > 0 && len(vec) != want {
		return nil, elapsed, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vec), want)
	}
	return vec, elapsed, nil
}
