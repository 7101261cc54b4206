package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/emotion"
	"github.com/timmy/contextual/internal/logger"
	"github.com/timmy/contextual/internal/service"
)

// AdminHandler exposes index maintenance. No authentication.
type AdminHandler struct {
	searchService *service.SearchService
	classifier    *emotion.Classifier
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(searchService *service.SearchService, classifier *emotion.Classifier) *AdminHandler {
	return &AdminHandler{
		searchService: searchService,
		classifier:    classifier,
	}
}

// Reset handles POST /api/v1/admin/reset. Drops every indexed entry.
func (h *AdminHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()
	logger.CtxWarn(ctx, "Index reset requested: client_ip=%s", c.ClientIP())

	collection, err := h.searchService.Reset(ctx)
	if err != nil {
		respondError(c, "Reset", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "reset",
		"collection": collection,
	})
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.searchService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "Stats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection":        stats.Collection,
		"points":            stats.Points,
		"classifier_mode":   h.classifier.Mode(),
		"anchor_categories": h.classifier.AnchorCategories(),
	})
}
