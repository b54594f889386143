package handlers

import (
	"context"
	"net/http"

	"github.com/cortexahq/cortexa/internal/auth"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// OrganizationStore defines the interface for organization persistence operations.
type OrganizationStore interface {
	RegisterOrganization(ctx context.Context, user *models.User, org *models.Organization) error
}

// OrganizationsHandler handles organization registration endpoints.
type OrganizationsHandler struct {
	store  OrganizationStore
	tokens *auth.TokenIssuer
	logger zerolog.Logger
}

// NewOrganizationsHandler creates a new OrganizationsHandler.
func NewOrganizationsHandler(store OrganizationStore, tokens *auth.TokenIssuer, logger zerolog.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{
		store:  store,
		tokens: tokens,
		logger: logger.With().Str("component", "organizations_handler").Logger(),
	}
}

// RegisterRoutes registers organization routes. Registration is public,
// it is how both the organization and its first user come to exist.
func (h *OrganizationsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/organizations", h.Create)
}

// CreateOrgRequest is the request body for registering an organization.
// Any organization-level profile in the payload is ignored, only projects
// carry profiles.
type CreateOrgRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=255"`
	Industry   string   `json:"industry"`
	Size       string   `json:"size"`
	Country    string   `json:"country"`
	Services   []string `json:"services"`
	AdminName  string   `json:"adminName" binding:"required,min=1,max=255"`
	AdminEmail string   `json:"adminEmail" binding:"required,email"`
	AdminRole  string   `json:"adminRole"`
	Password   string   `json:"password" binding:"required"`
}

// CreateOrgResponse is the response body for a successful registration.
type CreateOrgResponse struct {
	Token        string               `json:"token"`
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
}

// Create registers a new organization together with its admin user. The
// admin becomes the owner and the first membership entry.
func (h *OrganizationsHandler) Create(c *gin.Context) {
	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.NewUser(req.AdminEmail, req.AdminName, req.AdminRole, hash)
	org := models.NewOrganization(req.Name, models.Slugify(req.Name), user.ID)
	org.Industry = req.Industry
	org.Size = req.Size
	org.Country = req.Country
	org.Services = req.Services

	if err := h.store.RegisterOrganization(c.Request.Context(), user, org); err != nil {
		h.logger.Warn().Err(err).Str("slug", org.Slug).Msg("organization registration failed")
		writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.logger.Info().
		Str("org_id", org.ID.String()).
		Str("slug", org.Slug).
		Str("owner_id", user.ID.String()).
		Msg("organization registered")

	c.JSON(http.StatusCreated, CreateOrgResponse{
		Token:        token,
		User:         user,
		Organization: org,
	})
}
