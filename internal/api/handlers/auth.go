package handlers

import (
	"context"
	"net/http"

	"github.com/cortexahq/cortexa/internal/auth"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthStore defines the interface for login lookups.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store  AuthStore
	tokens *auth.TokenIssuer
	logger zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, tokens *auth.TokenIssuer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store:  store,
		tokens: tokens,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterRoutes registers authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates a user by email and password and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		h.logger.Debug().Str("email", req.Email).Msg("login for unknown email")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.logger.Debug().Str("user_id", user.ID.String()).Msg("login with wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}
