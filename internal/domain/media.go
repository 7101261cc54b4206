package domain

import "time"

// Provenance tells where a MediaResult came from.
type Provenance string

const (
	ProvenanceIndexed  Provenance = "indexed"
	ProvenanceExternal Provenance = "external"
)

// MediaResult is a single GIF returned to callers.
// Score is only meaningful for indexed results.
type MediaResult struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	PreviewURL string     `json:"preview_url"`
	MP4URL     string     `json:"mp4_url"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Score      float32    `json:"score,omitempty"`
	Source     Provenance `json:"source"`
}

// IndexedEntry is what gets written to the vector index during lazy indexing.
// Vector is the embedding of Query, not of the media itself.
type IndexedEntry struct {
	Vector    []float32
	Media     MediaResult
	Query     string
	IndexedAt time.Time
}
