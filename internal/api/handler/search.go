package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/service"
)

// SearchHandler handles search-related endpoints.
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Limit < 0 {
		badRequest(c, "limit must be positive")
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(c, "Search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TrendingGifs handles GET /api/v1/trending/gifs.
func (h *SearchHandler) TrendingGifs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.searchService.Featured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "Trending", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}
