package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(query, mediaID string) *GifPayload {
	return &GifPayload{MediaID: mediaID, Title: mediaID, URL: "https://x/" + mediaID, Query: query, IndexedAt: time.Now()}
}

func TestMemoryIndex_SearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex("gifs", 2)

	require.NoError(t, idx.Upsert(ctx,
		[][]float32{{1, 0}, {0, 1}, {0.8, 0.6}},
		[]*GifPayload{payload("a", "m1"), payload("b", "m2"), payload("c", "m3")},
	))

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "m1", results[0].Payload.MediaID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "m3", results[1].Payload.MediaID)
	assert.InDelta(t, 0.8, results[1].Score, 1e-6)
}

func TestMemoryIndex_UpsertOverwritesSamePoint(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex("gifs", 0)

	require.NoError(t, idx.Upsert(ctx, [][]float32{{1, 0}}, []*GifPayload{payload("Happy", "m1")}))
	require.NoError(t, idx.Upsert(ctx, [][]float32{{1, 0}}, []*GifPayload{payload(" happy ", "m1")}))
	require.NoError(t, idx.Upsert(ctx, [][]float32{{1, 0}}, []*GifPayload{payload("glad", "m1")}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestMemoryIndex_Errors(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex("gifs", 3)

	err := idx.Upsert(ctx, [][]float32{{1, 0, 0}}, nil)
	assert.Error(t, err)

	err = idx.Upsert(ctx, [][]float32{{1, 0}}, []*GifPayload{payload("q", "m")})
	assert.Error(t, err)
}

func TestMemoryIndex_Reset(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex("gifs", 0)
	require.NoError(t, idx.Upsert(ctx, [][]float32{{1}}, []*GifPayload{payload("q", "m")}))

	require.NoError(t, idx.Reset(ctx))

	n, _ := idx.Count(ctx)
	assert.Zero(t, n)
	results, err := idx.Search(ctx, []float32{1}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestGifPayload_PointID(t *testing.T) {
	a := payload("Happy Dance", "m1").PointID()
	assert.Equal(t, a, payload("  happy dance", "m1").PointID())
	assert.NotEqual(t, a, payload("happy dance", "m2").PointID())
	assert.NotEqual(t, a, payload("sad", "m1").PointID())
}
