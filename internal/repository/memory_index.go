package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index used for tests and qdrant.in_memory mode.
type MemoryIndex struct {
	mu         sync.RWMutex
	collection string
	dimension  int
	ids        []string
	vectors    [][]float32
	payloads   []*GifPayload
	positions  map[string]int
}

// NewMemoryIndex creates an empty index. dimension <= 0 disables the size check.
func NewMemoryIndex(collection string, dimension int) *MemoryIndex {
	return &MemoryIndex{
		collection: collection,
		dimension:  dimension,
		positions:  make(map[string]int),
	}
}

// Collection returns the collection name.
func (m *MemoryIndex) Collection() string {
	return m.collection
}

// Upsert writes vectors[i] with payloads[i], replacing points with the same ID.
func (m *MemoryIndex) Upsert(_ context.Context, vectors [][]float32, payloads []*GifPayload) error {
	if len(vectors) != len(payloads) {
		return fmt.Errorf("vectors and payloads length mismatch: %d != %d", len(vectors), len(payloads))
	}
	for _, v := range vectors {
		if m.dimension > 0 && len(v) != m.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(v), m.dimension)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range vectors {
		id := payloads[i].PointID()
		vec := append([]float32(nil), v...)
		if pos, ok := m.positions[id]; ok {
			m.vectors[pos] = vec
			m.payloads[pos] = payloads[i]
			continue
		}
		m.positions[id] = len(m.ids)
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
		m.payloads = append(m.payloads, payloads[i])
	}
	return nil
}

// Search ranks every point by cosine similarity and returns the best topK.
func (m *MemoryIndex) Search(_ context.Context, vector []float32, topK int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]SearchResult, len(m.vectors))
	for i, v := range m.vectors {
		results[i] = SearchResult{
			ID:      m.ids[i],
			Score:   CosineSimilarity(vector, v),
			Payload: m.payloads[i],
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK >= 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Reset drops every point.
func (m *MemoryIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ids = nil
	m.vectors = nil
	m.payloads = nil
	m.positions = make(map[string]int)
	return nil
}

// Count returns the number of stored points.
func (m *MemoryIndex) Count(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.ids)), nil
}

// Close is a no-op so MemoryIndex can stand in for QdrantRepository.
func (m *MemoryIndex) Close() error {
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
