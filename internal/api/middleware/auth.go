// Package middleware provides HTTP middleware for the Cortexa API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/cortexahq/cortexa/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserIDContextKey is the Gin context key for the authenticated user's ID.
const UserIDContextKey = "user_id"

// AuthMiddleware returns a Gin middleware that requires a valid bearer token.
func AuthMiddleware(tokens *auth.TokenIssuer, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth_middleware").Logger()

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			log.Debug().Str("path", c.Request.URL.Path).Msg("missing bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, err := tokens.Validate(tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the Gin context, or
// uuid.Nil if the request did not pass AuthMiddleware.
func GetUserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(UserIDContextKey)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
