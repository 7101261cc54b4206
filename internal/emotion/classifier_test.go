package emotion

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/contextual/internal/domain"
)

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	fail    map[string]bool
	texts   []string
}

func (f *fakeEmbedder) Encode(_ context.Context, text string) ([]float32, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.fail[text] {
		return nil, 0, errors.New("encode failed")
	}
	if v, ok := f.vectors[text]; ok {
		return v, time.Millisecond, nil
	}
	return []float32{0, 0, 0, 1}, time.Millisecond, nil
}

func (f *fakeEmbedder) Dimensions() int { return 4 }

func testCatalog() *Catalog {
	return NewCatalog(map[domain.Category]CategoryConfig{
		domain.CategoryCoding:  {Anchors: []string{"code", "bug"}, Suggestions: []string{"hacker typing"}},
		domain.CategoryWaiting: {Anchors: []string{"waiting", "soon"}, Suggestions: []string{"tapping fingers"}},
		domain.CategoryJoy:     {Anchors: []string{"happy"}, Suggestions: []string{"happy dance"}},
		domain.CategoryNeutral: {Suggestions: []string{"ok"}},
	}, []string{"trending"})
}

// 0.4 cosine against the coding anchor (1,0,0,0), orthogonal to the others.
var msgCoding04 = []float32{0.4, float32(math.Sqrt(1 - 0.16)), 0, 0}

func testEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"code bug":       {1, 0, 0, 0},
		"waiting soon":   {0, 0, 1, 0},
		"happy":          {0, 0, 0, 1},
		"my build broke": msgCoding04,
		"deploying now":  {1, 0, 0, 0},
		"so happy":       {0, 0, 0, 1},
		"hmm":            {0, 1, 0, 0},
		"":               {0, 1, 0, 0},
	}}
}

func newTestClassifier(t *testing.T, emb *fakeEmbedder, model *Model) *Classifier {
	t.Helper()
	catalog := testCatalog()
	anchors, err := BuildAnchorCache(context.Background(), emb, catalog, AnchorCandidates(catalog, model), nil)
	require.NoError(t, err)
	return NewClassifier(emb, model, anchors, catalog, DefaultThresholds(), nil)
}

func TestClassifier_EmptyMessages(t *testing.T) {
	c := newTestClassifier(t, testEmbedder(), nil)

	for _, msgs := range []Context{nil, {}} {
		res, err := c.Classify(context.Background(), msgs)
		require.NoError(t, err)
		assert.Equal(t, &Result{Category: domain.CategoryNeutral, Confidence: 0, Suggestions: []string{}}, res)
	}
}

func TestClassifier_AnchorOverrideWithoutModel(t *testing.T) {
	c := newTestClassifier(t, testEmbedder(), nil)
	assert.Equal(t, "anchors", c.Mode())

	res, err := c.Classify(context.Background(), Context{"my build broke"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCoding, res.Category)
	assert.InDelta(t, 0.4, res.Confidence, 1e-5)
	assert.Equal(t, []string{"hacker typing"}, res.Suggestions)
}

func TestClassifier_UsesLastMessageOnly(t *testing.T) {
	emb := testEmbedder()
	c := newTestClassifier(t, emb, nil)

	res, err := c.Classify(context.Background(), Context{"my build broke", "so happy"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryJoy, res.Category)
	assert.Equal(t, "so happy", emb.texts[len(emb.texts)-1])
}

func TestClassifier_BlankLastMessageIsEncoded(t *testing.T) {
	emb := testEmbedder()
	c := newTestClassifier(t, emb, nil)

	res, err := c.Classify(context.Background(), Context{"my build broke", ""})
	require.NoError(t, err)
	assert.Equal(t, "", emb.texts[len(emb.texts)-1], "the blank last message is what gets encoded")
	assert.Equal(t, domain.CategoryNeutral, res.Category)
	assert.Equal(t, float32(0), res.Confidence)
	assert.Equal(t, []string{"ok"}, res.Suggestions)
}

func TestClassifier_ModelAndAnchors(t *testing.T) {
	// Uniform distribution over two labels: joy with confidence 0.5.
	model, err := ParseModel(strings.NewReader(`{"labels":["joy","neutral"],"coef":[[0,0,0,0],[0,0,0,0]],"intercept":[0,0]}`))
	require.NoError(t, err)

	c := newTestClassifier(t, testEmbedder(), model)
	assert.Equal(t, "model+anchors", c.Mode())
	assert.NotContains(t, c.AnchorCategories(), domain.CategoryJoy, "joy is covered by the model")

	res, err := c.Classify(context.Background(), Context{"hmm"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryJoy, res.Category)
	assert.InDelta(t, 0.5, res.Confidence, 1e-6)

	res, err = c.Classify(context.Background(), Context{"deploying now"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCoding, res.Category, "low-trust answer overridden by a stronger anchor")
	assert.InDelta(t, 1.0, res.Confidence, 1e-6)
}

func TestClassifier_Failures(t *testing.T) {
	t.Run("embedding failure degrades to neutral", func(t *testing.T) {
		emb := testEmbedder()
		c := newTestClassifier(t, emb, nil)
		emb.fail = map[string]bool{"boom": true}

		res, err := c.Classify(context.Background(), Context{"boom"})
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryNeutral, res.Category)
		assert.Zero(t, res.Confidence)
		assert.Empty(t, res.Suggestions)
	})

	t.Run("inference failure degrades to neutral", func(t *testing.T) {
		model, err := ParseModel(strings.NewReader(`{"labels":["joy"],"coef":[[1,2]],"intercept":[0]}`))
		require.NoError(t, err)
		c := NewClassifier(testEmbedder(), model, nil, testCatalog(), DefaultThresholds(), nil)

		res, err := c.Classify(context.Background(), Context{"hmm"})
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryNeutral, res.Category)
	})

	t.Run("no embedder", func(t *testing.T) {
		c := NewClassifier(nil, nil, nil, testCatalog(), DefaultThresholds(), nil)
		assert.Equal(t, "unavailable", c.Mode())

		_, err := c.Classify(context.Background(), Context{"hello"})
		assert.ErrorIs(t, err, domain.ErrClassifierUnavailable)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	})
}

func TestContext_Transcript(t *testing.T) {
	assert.Equal(t, "a\nb", Context{"a", "b"}.Transcript())
}
