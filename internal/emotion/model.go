package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/storage"
)

// Model is a multinomial logistic regression over sentence embeddings.
// Coef has one row per label.
type Model struct {
	Labels    []string    `json:"labels"`
	Coef      [][]float32 `json:"coef"`
	Intercept []float32   `json:"intercept"`
}

// Prediction is the arg-max of the model's distribution.
type Prediction struct {
	Label      string
	Category   domain.Category
	Confidence float32
}

// LoadModel opens the artifact at location (local path or s3://bucket/key).
// An empty location means no model and returns (nil, nil).
func LoadModel(ctx context.Context, store storage.ArtifactStore, location string) (*Model, error) {
	if location == "" {
		return nil, nil
	}
	rc, err := store.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open classifier model %s: %w", location, err)
	}
	defer rc.Close()

	return ParseModel(rc)
}

// ParseModel decodes and validates a JSON artifact.
func ParseModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid classifier model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) validate() error {
	if len(m.Labels) == 0 {
		return errors.New("classifier model has no labels")
	}
	if len(m.Coef) != len(m.Labels) || len(m.Intercept) != len(m.Labels) {
		return fmt.Errorf("classifier model shape mismatch: labels=%d coef=%d intercept=%d",
			len(m.Labels), len(m.Coef), len(m.Intercept))
	}
	dim := len(m.Coef[0])
	if dim == 0 {
		return errors.New("classifier model has empty coefficient rows")
	}
	for i, row := range m.Coef {
		if len(row) != dim {
			return fmt.Errorf("classifier model row %d has %d weights, expected %d", i, len(row), dim)
		}
	}
	return nil
}

// Dimensions returns the embedding size the model expects.
func (m *Model) Dimensions() int {
	return len(m.Coef[0])
}

// Categories returns the categories reachable from the model's labels.
func (m *Model) Categories() map[domain.Category]struct{} {
	out := make(map[domain.Category]struct{}, len(m.Labels))
	for _, l := range m.Labels {
		out[domain.MapLabel(l)] = struct{}{}
	}
	return out
}

// Predict returns the most probable label under softmax.
func (m *Model) Predict(vec []float32) (*Prediction, error) {
	if len(vec) != m.Dimensions() {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, model expects %d", len(vec), m.Dimensions())
	}

	logits := make([]float64, len(m.Labels))
	maxLogit := math.Inf(-1)
	for i, row := range m.Coef {
		z := float64(m.Intercept[i])
		for j, w := range row {
			z += float64(w) * float64(vec[j])
		}
		logits[i] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	var sum float64
	best := 0
	for i, z := range logits {
		logits[i] = math.Exp(z - maxLogit)
		sum += logits[i]
		if logits[i] > logits[best] {
			best = i
		}
	}

	return &Prediction{
		Label:      m.Labels[best],
		Category:   domain.MapLabel(m.Labels[best]),
		Confidence: float32(logits[best] / sum),
	}, nil
}
