package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/timmy/contextual/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository persists pinned GIFs.
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Upsert stores fav. Saving a media ID twice refreshes its display fields.
func (r *FavoriteRepository) Upsert(ctx context.Context, fav *domain.Favorite) error {
	if fav.MediaID == "" {
		return fmt.Errorf("%w: media_id is required", domain.ErrInvalidRequest)
	}
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "media_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "url", "preview_url", "mp4_url", "width", "height"}),
	}).Create(fav).Error
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// GetByMediaID returns the favorite for mediaID or domain.ErrNotFound.
func (r *FavoriteRepository) GetByMediaID(ctx context.Context, mediaID string) (*domain.Favorite, error) {
	var fav domain.Favorite
	err := r.db.WithContext(ctx).Where("media_id = ?", mediaID).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// List returns favorites newest first.
func (r *FavoriteRepository) List(ctx context.Context, limit, offset int) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&favs).Error; err != nil {
		return nil, err
	}
	return favs, nil
}

// Delete removes the favorite for mediaID.
func (r *FavoriteRepository) Delete(ctx context.Context, mediaID string) error {
	res := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&domain.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of favorites.
func (r *FavoriteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).Count(&n).Error
	return n, err
}
