package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/contextual/internal/domain"
)

// pointNamespace seeds deterministic point IDs so re-indexing the same
// (query, media) pair overwrites instead of duplicating.
var pointNamespace = uuid.MustParse("6f1d7c3e-2b9a-4f4e-9a51-1c0d6f6c8e21")

// GifPayload is stored alongside each vector.
type GifPayload struct {
	MediaID    string
	Title      string
	URL        string
	PreviewURL string
	MP4URL     string
	Width      int
	Height     int
	Query      string // query whose embedding the vector is
	IndexedAt  time.Time
}

// PayloadFromEntry flattens an IndexedEntry into a payload.
func PayloadFromEntry(e domain.IndexedEntry) *GifPayload {
	return &GifPayload{
		MediaID:    e.Media.ID,
		Title:      e.Media.Title,
		URL:        e.Media.URL,
		PreviewURL: e.Media.PreviewURL,
		MP4URL:     e.Media.MP4URL,
		Width:      e.Media.Width,
		Height:     e.Media.Height,
		Query:      e.Query,
		IndexedAt:  e.IndexedAt,
	}
}

// Media converts the payload back into an indexed MediaResult.
func (p *GifPayload) Media(score float32) domain.MediaResult {
	return domain.MediaResult{
		ID:         p.MediaID,
		Title:      p.Title,
		URL:        p.URL,
		PreviewURL: p.PreviewURL,
		MP4URL:     p.MP4URL,
		Width:      p.Width,
		Height:     p.Height,
		Score:      score,
		Source:     domain.ProvenanceIndexed,
	}
}

// PointID derives a stable UUID from the normalized query and media ID.
func (p *GifPayload) PointID() string {
	key := strings.ToLower(strings.TrimSpace(p.Query)) + "\x00" + p.MediaID
	return uuid.NewSHA1(pointNamespace, []byte(key)).String()
}

// SearchResult represents a single nearest-neighbour hit.
type SearchResult struct {
	ID      string
	Score   float32
	Payload *GifPayload
}
