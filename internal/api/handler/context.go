package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/emotion"
)

// ContextHandler serves conversation classification and suggestions.
type ContextHandler struct {
	classifier *emotion.Classifier
	catalog    *emotion.Catalog
}

// NewContextHandler creates a new context handler.
func NewContextHandler(classifier *emotion.Classifier, catalog *emotion.Catalog) *ContextHandler {
	return &ContextHandler{
		classifier: classifier,
		catalog:    catalog,
	}
}

// ContextRequest is the body of POST /api/v1/context.
type ContextRequest struct {
	Messages []string `json:"messages"`
}

// Analyze handles POST /api/v1/context.
func (h *ContextHandler) Analyze(c *gin.Context) {
	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), emotion.Context(req.Messages))
	if err != nil {
		respondError(c, "Context analysis", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Trending handles GET /api/v1/trending. With ?category= it returns that
// category's suggestions, otherwise the global trending list.
func (h *ContextHandler) Trending(c *gin.Context) {
	if raw := c.Query("category"); raw != "" {
		category := domain.NormalizeCategory(raw)
		c.JSON(http.StatusOK, gin.H{
			"category":    category,
			"suggestions": h.catalog.Suggestions(category),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": h.catalog.Trending(),
	})
}
