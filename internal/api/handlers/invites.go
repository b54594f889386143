package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cortexahq/cortexa/internal/api/middleware"
	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/invites"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/cortexahq/cortexa/internal/tenancy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InviteScopeStore resolves the issuer's role within the invite's scope.
type InviteScopeStore interface {
	GetOrganizationByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetMembershipsByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Membership, error)
}

// InvitesHandler handles invite issue and redemption endpoints.
type InvitesHandler struct {
	service *invites.Service
	store   InviteScopeStore
	logger  zerolog.Logger
}

// NewInvitesHandler creates a new InvitesHandler.
func NewInvitesHandler(service *invites.Service, store InviteScopeStore, logger zerolog.Logger) *InvitesHandler {
	return &InvitesHandler{
		service: service,
		store:   store,
		logger:  logger.With().Str("component", "invites_handler").Logger(),
	}
}

// RegisterRoutes registers invite routes.
func (h *InvitesHandler) RegisterRoutes(r *gin.RouterGroup) {
	inv := r.Group("/invites")
	{
		inv.POST("", h.Create)
		inv.POST("/redeem", h.Redeem)
		inv.GET("/scope/:id", h.ListPending)
	}
}

// CreateInviteRequest is the request body for issuing an invite. ScopeID
// may name either an organization or a project.
type CreateInviteRequest struct {
	ScopeID        uuid.UUID `json:"scopeId" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Role           string    `json:"role"`
	Specialization *string   `json:"specialization"`
	TTLSeconds     int64     `json:"ttlSeconds"`
}

// Create issues a new invite for a scope. The caller must hold an
// invite-capable role in that scope.
func (h *InvitesHandler) Create(c *gin.Context) {
	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Role != "" && !models.IsValidMemberRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite role: " + req.Role})
		return
	}

	callerID := middleware.GetUserID(c)
	role, err := h.resolveScopeRole(c.Request.Context(), req.ScopeID, callerID)
	if err != nil {
		writeError(c, err)
		return
	}

	invite, err := h.service.Issue(c.Request.Context(), invites.IssueRequest{
		ScopeID:        req.ScopeID,
		IssuerID:       callerID,
		IssuerRole:     role,
		Email:          req.Email,
		Role:           models.MemberRole(req.Role),
		Specialization: req.Specialization,
		TTL:            time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

// RedeemInviteRequest is the request body for redeeming an invite code.
type RedeemInviteRequest struct {
	Code string `json:"code" binding:"required"`
}

// Redeem consumes an invite code and joins the caller to its scope.
func (h *InvitesHandler) Redeem(c *gin.Context) {
	var req RedeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	membership, err := h.service.Redeem(c.Request.Context(), req.Code, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "membership": membership})
}

// ListPending returns the unredeemed invites for a scope. Only members
// who can issue invites may see them.
func (h *InvitesHandler) ListPending(c *gin.Context) {
	scopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scope ID"})
		return
	}

	role, err := h.resolveScopeRole(c.Request.Context(), scopeID, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !role.CanIssueInvites() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	pending, err := h.service.GetPending(c.Request.Context(), scopeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": pending})
}

// resolveScopeRole works out the caller's role in a scope that may be an
// organization or a project. Project scopes have no drifted owner to
// reconcile, their creator is authoritative.
func (h *InvitesHandler) resolveScopeRole(ctx context.Context, scopeID, callerID uuid.UUID) (tenancy.Role, error) {
	members, err := h.store.GetMembershipsByScopeID(ctx, scopeID)
	if err != nil {
		return tenancy.RoleGuest, err
	}

	org, err := h.store.GetOrganizationByID(ctx, scopeID)
	if err == nil {
		return tenancy.ResolveRole(org.OwnerID, members, callerID).Role, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return tenancy.RoleGuest, err
	}
	project, err := h.store.GetProjectByID(ctx, scopeID)
	if err != nil {
		return tenancy.RoleGuest, err
	}
	return tenancy.ResolveRole(project.CreatedBy, members, callerID).Role, nil
}
