package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/logger"
)

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.CtxError(c.Request.Context(), "%s failed: error=%v", action, err)
	}

	c.JSON(status, gin.H{
		"error": action + " failed: " + err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid request: " + msg,
	})
}
