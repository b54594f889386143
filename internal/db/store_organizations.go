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

const orgColumns = "id, name, slug, owner_id, industry, size, country, services, settings, created_at, updated_at"

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	var settings []byte
	err := row.Scan(
		&org.ID, &org.Name, &org.Slug, &org.OwnerID,
		&org.Industry, &org.Size, &org.Country, &org.Services,
		&settings, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &org.Settings); err != nil {
			return nil, fmt.Errorf("decode organization settings: %w", err)
		}
	}
	return &org, nil
}

// RegisterOrganization atomically creates the admin user, the organization,
// and the owner's membership entry at position 0. A duplicate email or slug
// rolls the whole registration back with ErrConflict.
func (db *DB) RegisterOrganization(ctx context.Context, user *models.User, org *models.Organization) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, name, title, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, user.ID, user.Email, user.Name, user.Title, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return writeErr("register user", err)
		}

		if err := insertOrganization(ctx, tx, org); err != nil {
			return err
		}

		owner := models.NewMembership(org.ID, user.ID, models.MemberRoleOmni, nil, 0)
		_, err = tx.Exec(ctx, `
			INSERT INTO memberships (id, scope_id, user_id, role, specialization, position, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, owner.ID, owner.ScopeID, owner.UserID, string(owner.Role), owner.Specialization, owner.Position, owner.JoinedAt)
		if err != nil {
			return writeErr("register owner membership", err)
		}
		return nil
	})
}

func insertOrganization(ctx context.Context, tx pgx.Tx, org *models.Organization) error {
	var settings []byte
	if org.Settings != nil {
		var err error
		settings, err = json.Marshal(org.Settings)
		if err != nil {
			return fmt.Errorf("encode organization settings: %w", err)
		}
	}
	services := org.Services
	if services == nil {
		services = []string{}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO organizations (id, name, slug, owner_id, industry, size, country, services, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, org.ID, org.Name, org.Slug, org.OwnerID, org.Industry, org.Size, org.Country,
		services, settings, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return writeErr("create organization", err)
	}
	return nil
}

// GetOrganizationByID returns an organization by its ID.
func (db *DB) GetOrganizationByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := scanOrganization(db.Pool.QueryRow(ctx,
		"SELECT "+orgColumns+" FROM organizations WHERE id = $1", id))
	if err != nil {
		return nil, readErr("get organization by ID", err)
	}
	return org, nil
}

// GetOrganizationBySlug returns an organization by its slug.
func (db *DB) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	org, err := scanOrganization(db.Pool.QueryRow(ctx,
		"SELECT "+orgColumns+" FROM organizations WHERE slug = $1", slug))
	if err != nil {
		return nil, readErr("get organization by slug", err)
	}
	return org, nil
}

// OrganizationExists reports whether an organization with the given ID exists.
func (db *DB) OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM organizations WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check organization exists: %w", err)
	}
	return exists, nil
}

// GetAllOrganizations returns all organizations ordered by name.
func (db *DB) GetAllOrganizations(ctx context.Context) ([]*models.Organization, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+orgColumns+" FROM organizations ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// UpdateOrganizationSettings overwrites the settings document. Used by the
// resolver's repair signal when a legacy profile key is stripped.
func (db *DB) UpdateOrganizationSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	var encoded []byte
	if settings != nil {
		var err error
		encoded, err = json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("encode organization settings: %w", err)
		}
	}
	_, err := db.Pool.Exec(ctx, `
		UPDATE organizations
		SET settings = $2, updated_at = $3
		WHERE id = $1
	`, id, encoded, time.Now())
	if err != nil {
		return fmt.Errorf("update organization settings: %w", err)
	}
	return nil
}

// ReassignOrganizationOwner points owner_id and the position-0 membership
// entry at the given user. Used by the repair pass for dangling owners.
func (db *DB) ReassignOrganizationOwner(ctx context.Context, orgID, newOwnerID uuid.UUID) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		now := time.Now()
		_, err := tx.Exec(ctx, `
			UPDATE organizations
			SET owner_id = $2, updated_at = $3
			WHERE id = $1
		`, orgID, newOwnerID, now)
		if err != nil {
			return fmt.Errorf("reassign organization owner: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE memberships
			SET user_id = $2
			WHERE scope_id = $1 AND position = 0
		`, orgID, newOwnerID)
		if err != nil {
			return writeErr("reassign owner membership", err)
		}
		return nil
	})
}
