// Package handlers implements the HTTP handlers for the Cortexa API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// writeError maps a domain error to an HTTP status and writes the
// standard error body. Unknown errors become a 500 with a generic
// message so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrInviteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInviteAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInviteExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrOrphanedProject),
		errors.Is(err, apperrors.ErrIntegrity):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data integrity error"})
	case errors.Is(err, apperrors.ErrCodeSpaceExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
