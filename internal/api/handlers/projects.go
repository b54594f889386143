package handlers

import (
	"context"
	"net/http"

	"github.com/cortexahq/cortexa/internal/api/middleware"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/cortexahq/cortexa/internal/tenancy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProjectStore defines the interface for project persistence operations.
type ProjectStore interface {
	GetOrganizationByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetMembershipsByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Membership, error)
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectsByOrgID(ctx context.Context, orgID uuid.UUID) ([]*models.Project, error)
}

// ProjectsHandler handles project endpoints.
type ProjectsHandler struct {
	store  ProjectStore
	logger zerolog.Logger
}

// NewProjectsHandler creates a new ProjectsHandler.
func NewProjectsHandler(store ProjectStore, logger zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		store:  store,
		logger: logger.With().Str("component", "projects_handler").Logger(),
	}
}

// RegisterRoutes registers project routes.
func (h *ProjectsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/organizations/:id/projects", h.Create)
	r.GET("/organizations/:id/projects", h.List)
}

// CreateProjectRequest is the request body for creating a project. The
// profile is stored as provided.
type CreateProjectRequest struct {
	Name    string                 `json:"name" binding:"required,min=1,max=255"`
	Profile *models.ProjectProfile `json:"profile"`
}

// Create creates a project inside an organization. The caller must hold a
// non-guest role in the organization and becomes the project's creator.
func (h *ProjectsHandler) Create(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization ID"})
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	callerID := middleware.GetUserID(c)
	role, err := h.resolveOrgRole(c.Request.Context(), orgID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if role == tenancy.RoleGuest {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this organization"})
		return
	}

	project := models.NewProject(orgID, req.Name, models.Slugify(req.Name), callerID, req.Profile)
	if err := h.store.CreateProject(c.Request.Context(), project); err != nil {
		h.logger.Warn().Err(err).Str("org_id", orgID.String()).Str("slug", project.Slug).Msg("project creation failed")
		writeError(c, err)
		return
	}

	h.logger.Info().
		Str("project_id", project.ID.String()).
		Str("org_id", orgID.String()).
		Str("created_by", callerID.String()).
		Msg("project created")

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// List returns the projects of an organization visible to the caller.
func (h *ProjectsHandler) List(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization ID"})
		return
	}

	callerID := middleware.GetUserID(c)
	role, err := h.resolveOrgRole(c.Request.Context(), orgID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if role == tenancy.RoleGuest {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this organization"})
		return
	}

	projects, err := h.store.GetProjectsByOrgID(c.Request.Context(), orgID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectsHandler) resolveOrgRole(ctx context.Context, orgID, callerID uuid.UUID) (tenancy.Role, error) {
	org, err := h.store.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return tenancy.RoleGuest, err
	}
	members, err := h.store.GetMembershipsByScopeID(ctx, orgID)
	if err != nil {
		return tenancy.RoleGuest, err
	}
	return tenancy.ResolveRole(org.OwnerID, members, callerID).Role, nil
}
