package handlers

import (
	"net/http"

	"github.com/cortexahq/cortexa/internal/api/middleware"
	"github.com/cortexahq/cortexa/internal/tenancy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TenancyHandler serves the tenancy context endpoints the frontend boots
// from after scope selection.
type TenancyHandler struct {
	resolver *tenancy.Resolver
	logger   zerolog.Logger
}

// NewTenancyHandler creates a new TenancyHandler.
func NewTenancyHandler(resolver *tenancy.Resolver, logger zerolog.Logger) *TenancyHandler {
	return &TenancyHandler{
		resolver: resolver,
		logger:   logger.With().Str("component", "tenancy_handler").Logger(),
	}
}

// RegisterRoutes registers tenancy context routes.
func (h *TenancyHandler) RegisterRoutes(r *gin.RouterGroup) {
	ctx := r.Group("/tenancy/context")
	{
		ctx.GET("/organization/:id", h.OrganizationContext)
		ctx.GET("/project/:id", h.ProjectContext)
	}
}

// OrganizationContext resolves the caller's view of an organization.
func (h *TenancyHandler) OrganizationContext(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization ID"})
		return
	}

	context, err := h.resolver.ResolveOrganizationContext(c.Request.Context(), orgID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "context": context})
}

// ProjectContext resolves the caller's view of a project.
func (h *TenancyHandler) ProjectContext(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	context, err := h.resolver.ResolveProjectContext(c.Request.Context(), projectID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "context": context})
}
