package tenancy

import (
	"context"
	"fmt"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/metrics"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store defines the interface for the persistence operations the resolver
// depends on.
type Store interface {
	GetOrganizationByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateOrganizationSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error
	GetProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetMembershipsByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Membership, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
}

// OrganizationContext is the resolved bundle returned to organization-scoped
// business logic. The organization record is guaranteed profile-free.
type OrganizationContext struct {
	Organization   *models.Organization `json:"organization"`
	Role           Role                 `json:"role"`
	CanSeeFullInfo bool                 `json:"canSeeFullInfo"`
	Members        []Member             `json:"members"`
}

// ProjectContext is the resolved bundle returned to project-scoped business
// logic. The project's profile, when present, is included verbatim.
type ProjectContext struct {
	Project        *models.Project `json:"project"`
	Role           Role            `json:"role"`
	CanSeeFullInfo bool            `json:"canSeeFullInfo"`
	Members        []Member        `json:"members"`
}

// Resolver binds requests to their tenant scope and computes the caller's
// effective role. Resolution is read-mostly; the only write is the
// defensive strip of legacy profile data, which doubles as a repair.
type Resolver struct {
	store  Store
	logger zerolog.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(store Store, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With().Str("component", "tenancy_resolver").Logger(),
	}
}

// ResolveOrganizationContext loads the organization, classifies the caller,
// and returns the unified context. Callers with no standing in the scope
// are denied with ErrForbidden rather than handed a guest context.
//
// Any legacy profile data found on the record is stripped before the
// record leaves this method, and a repair write is issued so the anomaly
// is not re-served on every call.
func (r *Resolver) ResolveOrganizationContext(ctx context.Context, orgID, callerID uuid.UUID) (*OrganizationContext, error) {
	org, err := r.store.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if org.StripProfile() {
		r.logger.Warn().
			Str("org_id", orgID.String()).
			Msg("stripped legacy profile data from organization record")
		metrics.ProfileStrips.Inc()
		if err := r.store.UpdateOrganizationSettings(ctx, orgID, org.Settings); err != nil {
			// Resolution still succeeds; the strip will repeat until an
			// offline repair lands.
			r.logger.Error().Err(err).
				Str("org_id", orgID.String()).
				Msg("failed to persist profile strip repair")
		}
	}

	members, err := r.store.GetMembershipsByScopeID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load organization members: %w", err)
	}

	res := ResolveRole(org.OwnerID, members, callerID)
	if res.Role == RoleGuest {
		return nil, apperrors.ErrForbidden
	}

	listing, err := r.memberListing(ctx, members, res.CanSeeFullInfo)
	if err != nil {
		return nil, err
	}

	return &OrganizationContext{
		Organization:   org,
		Role:           res.Role,
		CanSeeFullInfo: res.CanSeeFullInfo,
		Members:        listing,
	}, nil
}

// ResolveProjectContext loads the project, verifies its organization still
// resolves, classifies the caller against the project's own membership
// list, and returns the unified context.
func (r *Resolver) ResolveProjectContext(ctx context.Context, projectID, callerID uuid.UUID) (*ProjectContext, error) {
	project, err := r.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	orgExists, err := r.store.OrganizationExists(ctx, project.OrgID)
	if err != nil {
		return nil, fmt.Errorf("verify project organization: %w", err)
	}
	if !orgExists {
		r.logger.Error().
			Str("project_id", projectID.String()).
			Str("org_id", project.OrgID.String()).
			Msg("project references a missing organization, offline repair required")
		metrics.OrphanedProjects.Inc()
		return nil, apperrors.ErrOrphanedProject
	}

	members, err := r.store.GetMembershipsByScopeID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project members: %w", err)
	}

	res := ResolveRole(project.CreatedBy, members, callerID)
	if res.Role == RoleGuest {
		return nil, apperrors.ErrForbidden
	}

	listing, err := r.memberListing(ctx, members, res.CanSeeFullInfo)
	if err != nil {
		return nil, err
	}

	return &ProjectContext{
		Project:        project,
		Role:           res.Role,
		CanSeeFullInfo: res.CanSeeFullInfo,
		Members:        listing,
	}, nil
}

// memberListing joins memberships with user records and applies redaction.
func (r *Resolver) memberListing(ctx context.Context, members []*models.Membership, canSeeFullInfo bool) ([]Member, error) {
	if len(members) == 0 {
		return []Member{}, nil
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	users, err := r.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load member users: %w", err)
	}

	byID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	return buildMembers(members, byID, canSeeFullInfo), nil
}
