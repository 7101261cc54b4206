package domain

import "time"

// Favorite is a GIF the user pinned for later.
type Favorite struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	MediaID    string    `gorm:"type:text;not null;uniqueIndex:idx_favorites_media" json:"media_id"`
	Title      string    `gorm:"type:text" json:"title"`
	URL        string    `gorm:"type:text" json:"url"`
	PreviewURL string    `gorm:"type:text" json:"preview_url"`
	MP4URL     string    `gorm:"type:text" json:"mp4_url"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteFromMedia copies the display fields of a search result.
func FavoriteFromMedia(m MediaResult) Favorite {
	return Favorite{
		MediaID:    m.ID,
		Title:      m.Title,
		URL:        m.URL,
		PreviewURL: m.PreviewURL,
		MP4URL:     m.MP4URL,
		Width:      m.Width,
		Height:     m.Height,
	}
}
