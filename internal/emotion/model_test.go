package emotion

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/contextual/internal/domain"
)

const sampleModel = `{
  "labels": ["joy", "annoyance", "neutral"],
  "coef": [[2, 0], [0, 2], [0, 0]],
  "intercept": [0, 0, 0]
}`

type stringStore map[string]string

func (s stringStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	body, ok := s[location]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestModel_Predict(t *testing.T) {
	m, err := ParseModel(strings.NewReader(sampleModel))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dimensions())

	p, err := m.Predict([]float32{0, 3})
	require.NoError(t, err)
	assert.Equal(t, "annoyance", p.Label)
	assert.Equal(t, domain.CategoryAnger, p.Category)
	// softmax(0, 6, 0)
	assert.InDelta(t, 0.9951, p.Confidence, 1e-3)

	_, err = m.Predict([]float32{1})
	assert.Error(t, err)
}

func TestModel_PredictUniform(t *testing.T) {
	m, err := ParseModel(strings.NewReader(`{"labels":["joy","neutral"],"coef":[[0],[0]],"intercept":[0,0]}`))
	require.NoError(t, err)

	p, err := m.Predict([]float32{1})
	require.NoError(t, err)
	assert.Equal(t, "joy", p.Label, "ties resolve to the first label")
	assert.InDelta(t, 0.5, p.Confidence, 1e-6)
}

func TestParseModel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"no labels", `{"labels":[],"coef":[],"intercept":[]}`},
		{"row count", `{"labels":["a","b"],"coef":[[1]],"intercept":[0,0]}`},
		{"ragged rows", `{"labels":["a","b"],"coef":[[1,2],[1]],"intercept":[0,0]}`},
		{"empty rows", `{"labels":["a"],"coef":[[]],"intercept":[0]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel(strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadModel(t *testing.T) {
	ctx := context.Background()
	store := stringStore{"s3://models/emotion.json": sampleModel}

	m, err := LoadModel(ctx, store, "")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = LoadModel(ctx, store, "s3://models/emotion.json")
	require.NoError(t, err)
	assert.Len(t, m.Labels, 3)

	_, err = LoadModel(ctx, store, "s3://models/missing.json")
	assert.Error(t, err)
}

func TestModel_Categories(t *testing.T) {
	m, err := ParseModel(strings.NewReader(sampleModel))
	require.NoError(t, err)
	assert.Equal(t, map[domain.Category]struct{}{
		domain.CategoryJoy:     {},
		domain.CategoryAnger:   {},
		domain.CategoryNeutral: {},
	}, m.Categories())
}
