package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/repository"
)

// FavoriteHandler handles pinned GIFs.
type FavoriteHandler struct {
	repo *repository.FavoriteRepository
}

// NewFavoriteHandler creates a new favorites handler.
func NewFavoriteHandler(repo *repository.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{repo: repo}
}

// List handles GET /api/v1/favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		badRequest(c, "offset must be a non-negative integer")
		return
	}

	favs, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, "List favorites", err)
		return
	}
	if favs == nil {
		favs = []domain.Favorite{}
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favs,
		"total":     len(favs),
	})
}

// Add handles POST /api/v1/favorites. The body is a MediaResult.
func (h *FavoriteHandler) Add(c *gin.Context) {
	var media domain.MediaResult
	if err := c.ShouldBindJSON(&media); err != nil {
		badRequest(c, err.Error())
		return
	}

	fav := domain.FavoriteFromMedia(media)
	if err := h.repo.Upsert(c.Request.Context(), &fav); err != nil {
		respondError(c, "Add favorite", err)
		return
	}

	stored, err := h.repo.GetByMediaID(c.Request.Context(), fav.MediaID)
	if err != nil {
		respondError(c, "Add favorite", err)
		return
	}

	c.JSON(http.StatusCreated, stored)
}

// Remove handles DELETE /api/v1/favorites/:media_id.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	mediaID := c.Param("media_id")
	if err := h.repo.Delete(c.Request.Context(), mediaID); err != nil {
		respondError(c, "Remove favorite", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "removed",
		"media_id": mediaID,
	})
}
