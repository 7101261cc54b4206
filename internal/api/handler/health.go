package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/emotion"
	"github.com/timmy/contextual/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	searchService *service.SearchService
	classifier    *emotion.Classifier
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(searchService *service.SearchService, classifier *emotion.Classifier) *HealthHandler {
	return &HealthHandler{
		searchService: searchService,
		classifier:    classifier,
	}
}

// Health reports process liveness and which collaborators are configured.
// It always answers 200; "degraded" means some endpoints will return 503.
func (h *HealthHandler) Health(c *gin.Context) {
	components := h.searchService.Ready()
	status := "ok"
	for _, ready := range components {
		if !ready {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"components":      components,
		"classifier_mode": h.classifier.Mode(),
	})
}
