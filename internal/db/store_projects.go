package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const projectColumns = "id, org_id, name, slug, created_by, profile, created_at, updated_at"

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var profile []byte
	err := row.Scan(
		&p.ID, &p.OrgID, &p.Name, &p.Slug, &p.CreatedBy,
		&profile, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(profile) > 0 {
		p.Profile = &models.ProjectProfile{}
		if err := json.Unmarshal(profile, p.Profile); err != nil {
			return nil, fmt.Errorf("decode project profile: %w", err)
		}
	}
	return &p, nil
}

// CreateProject atomically creates the project and the creator's membership
// entry at position 0. A duplicate (slug, org_id) pair surfaces as
// ErrConflict. The profile subdocument, when present, is persisted verbatim.
func (db *DB) CreateProject(ctx context.Context, project *models.Project) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		var profile []byte
		if project.Profile != nil {
			var err error
			profile, err = json.Marshal(project.Profile)
			if err != nil {
				return fmt.Errorf("encode project profile: %w", err)
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO projects (id, org_id, name, slug, created_by, profile, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, project.ID, project.OrgID, project.Name, project.Slug, project.CreatedBy,
			profile, project.CreatedAt, project.UpdatedAt)
		if err != nil {
			return writeErr("create project", err)
		}

		creator := models.NewMembership(project.ID, project.CreatedBy, models.MemberRoleOmni, nil, 0)
		_, err = tx.Exec(ctx, `
			INSERT INTO memberships (id, scope_id, user_id, role, specialization, position, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, creator.ID, creator.ScopeID, creator.UserID, string(creator.Role), creator.Specialization, creator.Position, creator.JoinedAt)
		if err != nil {
			return writeErr("create creator membership", err)
		}
		return nil
	})
}

// GetProjectByID returns a project by its ID.
func (db *DB) GetProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(db.Pool.QueryRow(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = $1", id))
	if err != nil {
		return nil, readErr("get project by ID", err)
	}
	return p, nil
}

// GetProjectsByOrgID returns all projects under an organization.
func (db *DB) GetProjectsByOrgID(ctx context.Context, orgID uuid.UUID) ([]*models.Project, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE org_id = $1 ORDER BY name", orgID)
	if err != nil {
		return nil, fmt.Errorf("list projects by org: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetAllProjects returns all projects ordered by name.
func (db *DB) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ReassignProjectCreator points created_by at the given user. Used by the
// repair pass for dangling creator references.
func (db *DB) ReassignProjectCreator(ctx context.Context, projectID, newCreatorID uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE projects
		SET created_by = $2, updated_at = $3
		WHERE id = $1
	`, projectID, newCreatorID, time.Now())
	if err != nil {
		return fmt.Errorf("reassign project creator: %w", err)
	}
	return nil
}
