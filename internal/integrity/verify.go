// Package integrity audits and repairs the soft ownership references the
// store does not enforce. Both passes are offline batch tools and must
// never run on request-serving code paths.
package integrity

import (
	"context"
	"fmt"

	"github.com/cortexahq/cortexa/internal/metrics"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store defines the interface for the verify pass. It is strictly read-only.
type Store interface {
	GetAllOrganizations(ctx context.Context) ([]*models.Organization, error)
	GetAllProjects(ctx context.Context) ([]*models.Project, error)
	GetMembershipsByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Membership, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	FilterExistingUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

// Error describes one dangling reference found by the verify pass. For
// organizations the membership resolution counts show how much of the
// scope survives the drift.
type Error struct {
	ScopeType         string    `json:"scope_type"` // "organization" or "project"
	ScopeID           uuid.UUID `json:"scope_id"`
	ScopeName         string    `json:"scope_name"`
	Field             string    `json:"field"` // "owner_id" or "created_by"
	DanglingID        uuid.UUID `json:"dangling_id"`
	ResolvableMembers int       `json:"resolvable_members"`
	TotalMembers      int       `json:"total_members"`
}

// Report is the structured output of a verify pass.
type Report struct {
	OrganizationsScanned int     `json:"organizations_scanned"`
	ProjectsScanned      int     `json:"projects_scanned"`
	Errors               []Error `json:"errors"`
}

// Clean returns true when the pass found no dangling references.
func (r *Report) Clean() bool {
	return len(r.Errors) == 0
}

// Verifier performs the read-only integrity pass. Remediation is a
// separate, operator-driven step because reassigning ownership is a
// business decision.
type Verifier struct {
	store  Store
	logger zerolog.Logger
}

// NewVerifier creates a new Verifier.
func NewVerifier(store Store, logger zerolog.Logger) *Verifier {
	return &Verifier{
		store:  store,
		logger: logger.With().Str("component", "integrity_verifier").Logger(),
	}
}

// Run scans every organization's owner reference and every project's
// creator reference against the user store and reports the drift.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	orgs, err := v.store.GetAllOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	report.OrganizationsScanned = len(orgs)

	for _, org := range orgs {
		exists, err := v.store.UserExists(ctx, org.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("resolve owner of organization %s: %w", org.ID, err)
		}
		if exists {
			v.logger.Debug().Str("org", org.Name).Msg("organization owner resolves")
			continue
		}

		resolvable, total, err := v.countResolvableMembers(ctx, org.ID)
		if err != nil {
			return nil, err
		}

		v.logger.Warn().
			Str("org", org.Name).
			Str("org_id", org.ID.String()).
			Str("owner_id", org.OwnerID.String()).
			Int("resolvable_members", resolvable).
			Int("total_members", total).
			Msg("organization owner reference is dangling")
		metrics.IntegrityErrors.Inc()

		report.Errors = append(report.Errors, Error{
			ScopeType:         "organization",
			ScopeID:           org.ID,
			ScopeName:         org.Name,
			Field:             "owner_id",
			DanglingID:        org.OwnerID,
			ResolvableMembers: resolvable,
			TotalMembers:      total,
		})
	}

	projects, err := v.store.GetAllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	report.ProjectsScanned = len(projects)

	for _, p := range projects {
		exists, err := v.store.UserExists(ctx, p.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("resolve creator of project %s: %w", p.ID, err)
		}
		if exists {
			v.logger.Debug().Str("project", p.Name).Msg("project creator resolves")
			continue
		}

		v.logger.Warn().
			Str("project", p.Name).
			Str("project_id", p.ID.String()).
			Str("created_by", p.CreatedBy.String()).
			Msg("project creator reference is dangling")
		metrics.IntegrityErrors.Inc()

		report.Errors = append(report.Errors, Error{
			ScopeType:  "project",
			ScopeID:    p.ID,
			ScopeName:  p.Name,
			Field:      "created_by",
			DanglingID: p.CreatedBy,
		})
	}

	return report, nil
}

func (v *Verifier) countResolvableMembers(ctx context.Context, scopeID uuid.UUID) (resolvable, total int, err error) {
	members, err := v.store.GetMembershipsByScopeID(ctx, scopeID)
	if err != nil {
		return 0, 0, fmt.Errorf("list members of scope %s: %w", scopeID, err)
	}
	if len(members) == 0 {
		return 0, 0, nil
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	existing, err := v.store.FilterExistingUsers(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve members of scope %s: %w", scopeID, err)
	}

	for _, m := range members {
		if existing[m.UserID] {
			resolvable++
		}
	}
	return resolvable, len(members), nil
}
