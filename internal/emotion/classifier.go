package emotion

import (
	"context"
	"strings"

	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/logger"
	"github.com/timmy/contextual/internal/metrics"
	"github.com/timmy/contextual/internal/service"
)

// Context is an ordered conversation, oldest message first.
type Context []string

// Last returns the most recent message as sent, blank or not.
func (c Context) Last() (string, bool) {
	if len(c) == 0 {
		return "", false
	}
	return c[len(c)-1], true
}

// Transcript joins every message with newlines.
func (c Context) Transcript() string {
	return strings.Join(c, "\n")
}

// Result is the classifier output returned to callers.
type Result struct {
	Category    domain.Category `json:"category"`
	Confidence  float32         `json:"confidence"`
	Suggestions []string        `json:"suggestions"`
}

func neutralResult() *Result {
	return &Result{Category: domain.CategoryNeutral, Confidence: 0, Suggestions: []string{}}
}

// Classifier detects the tone of the latest message. All state is built at
// construction and only read afterwards.
type Classifier struct {
	embedder   service.Embedder
	model      *Model
	anchors    *AnchorCache
	catalog    *Catalog
	thresholds Thresholds
	metrics    *metrics.Recorder
}

// NewClassifier creates a classifier. model and anchors may be nil.
func NewClassifier(embedder service.Embedder, model *Model, anchors *AnchorCache, catalog *Catalog, th Thresholds, recorder *metrics.Recorder) *Classifier {
	if catalog == nil {
		catalog = EmptyCatalog()
	}
	return &Classifier{
		embedder:   embedder,
		model:      model,
		anchors:    anchors,
		catalog:    catalog,
		thresholds: th,
		metrics:    recorder,
	}
}

// Mode describes what the classifier runs on: "model+anchors",
// "anchors", or "unavailable".
func (c *Classifier) Mode() string {
	switch {
	case c.embedder == nil:
		return "unavailable"
	case c.model != nil:
		return "model+anchors"
	default:
		return "anchors"
	}
}

// AnchorCategories returns the categories the anchor stage can select.
func (c *Classifier) AnchorCategories() []domain.Category {
	return c.anchors.Categories()
}

// Classify returns the category of the last message with its confidence
// and suggestions. Only an empty conversation short-circuits to neutral. Embedding or inference failures degrade to
// neutral; a missing embedder is ErrClassifierUnavailable.
func (c *Classifier) Classify(ctx context.Context, messages Context) (*Result, error) {
	last, ok := messages.Last()
	if !ok {
		c.metrics.RecordClassification(metrics.StageEmpty)
		return neutralResult(), nil
	}
	if c.embedder == nil {
		return nil, domain.ErrClassifierUnavailable
	}

	ctx = logger.SetComponent(ctx, "classifier")

	vec, latency, err := c.embedder.Encode(ctx, last)
	c.metrics.ObserveEmbedding("classify", latency)
	if err != nil {
		logger.CtxWarn(ctx, "Message embedding failed, returning neutral: error=%v", err)
		c.metrics.RecordClassification(metrics.StageFailed)
		return neutralResult(), nil
	}

	var prediction *Prediction
	if c.model != nil {
		prediction, err = c.model.Predict(vec)
		if err != nil {
			logger.CtxWarn(ctx, "Classifier inference failed, returning neutral: error=%v", err)
			c.metrics.RecordClassification(metrics.StageFailed)
			return neutralResult(), nil
		}
	}

	decision := Decide(prediction, c.anchors.Score(vec), c.thresholds)
	c.metrics.RecordClassification(string(decision.Stage))

	fields := logger.Fields{
		logger.FieldCategory: decision.Category,
		logger.FieldScore:    decision.Score,
	}
	if prediction != nil {
		fields["label"] = prediction.Label
	}
	logger.With(fields).Debug(ctx, "Context classified: stage=%s", decision.Stage)

	return &Result{
		Category:    decision.Category,
		Confidence:  decision.Score,
		Suggestions: c.catalog.Suggestions(decision.Category),
	}, nil
}
