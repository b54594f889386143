package integrity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RepairStore extends the verify interface with the two reassignment
// writes the repair pass performs.
type RepairStore interface {
	Store
	ReassignOrganizationOwner(ctx context.Context, orgID, userID uuid.UUID) error
	ReassignProjectCreator(ctx context.Context, projectID, userID uuid.UUID) error
}

// RepairResult summarizes a repair pass. A second run over the same data
// reports zero repairs.
type RepairResult struct {
	OrganizationsRepaired int `json:"organizations_repaired"`
	ProjectsRepaired      int `json:"projects_repaired"`
}

// Total returns the number of mutations the pass performed.
func (r *RepairResult) Total() int {
	return r.OrganizationsRepaired + r.ProjectsRepaired
}

// Repairer reassigns dangling ownership references to a designated
// fallback user. Reassigning an organization also rewrites its first
// membership entry so the owner seat stays consistent with owner_id.
type Repairer struct {
	store  RepairStore
	logger zerolog.Logger
}

// NewRepairer creates a new Repairer.
func NewRepairer(store RepairStore, logger zerolog.Logger) *Repairer {
	return &Repairer{
		store:  store,
		logger: logger.With().Str("component", "integrity_repairer").Logger(),
	}
}

// Run repairs every dangling owner_id and created_by by pointing it at
// fallbackUserID. The fallback user must exist; repairing onto another
// dangling reference would only move the problem.
func (r *Repairer) Run(ctx context.Context, fallbackUserID uuid.UUID) (*RepairResult, error) {
	exists, err := r.store.UserExists(ctx, fallbackUserID)
	if err != nil {
		return nil, fmt.Errorf("resolve fallback user: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("fallback user %s does not exist", fallbackUserID)
	}

	result := &RepairResult{}

	orgs, err := r.store.GetAllOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	for _, org := range orgs {
		ok, err := r.store.UserExists(ctx, org.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("resolve owner of organization %s: %w", org.ID, err)
		}
		if ok {
			continue
		}
		if err := r.store.ReassignOrganizationOwner(ctx, org.ID, fallbackUserID); err != nil {
			return nil, fmt.Errorf("reassign owner of organization %s: %w", org.ID, err)
		}
		r.logger.Info().
			Str("org", org.Name).
			Str("org_id", org.ID.String()).
			Str("old_owner", org.OwnerID.String()).
			Str("new_owner", fallbackUserID.String()).
			Msg("reassigned organization owner")
		result.OrganizationsRepaired++
	}

	projects, err := r.store.GetAllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		ok, err := r.store.UserExists(ctx, p.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("resolve creator of project %s: %w", p.ID, err)
		}
		if ok {
			continue
		}
		if err := r.store.ReassignProjectCreator(ctx, p.ID, fallbackUserID); err != nil {
			return nil, fmt.Errorf("reassign creator of project %s: %w", p.ID, err)
		}
		r.logger.Info().
			Str("project", p.Name).
			Str("project_id", p.ID.String()).
			Str("old_creator", p.CreatedBy.String()).
			Str("new_creator", fallbackUserID.String()).
			Msg("reassigned project creator")
		result.ProjectsRepaired++
	}

	return result, nil
}
