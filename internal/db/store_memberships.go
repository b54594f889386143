package db

import (
	"context"
	"fmt"

	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const membershipColumns = "id, scope_id, user_id, role, specialization, position, joined_at"

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var m models.Membership
	var roleStr string
	err := row.Scan(
		&m.ID, &m.ScopeID, &m.UserID, &roleStr,
		&m.Specialization, &m.Position, &m.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Role = models.MemberRole(roleStr)
	return &m, nil
}

// GetMembershipsByScopeID returns a scope's membership list in insertion
// order, the position-0 entry first.
func (db *DB) GetMembershipsByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Membership, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE scope_id = $1 ORDER BY position", scopeID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMembershipByScopeAndUser returns a single membership entry, or
// ErrNotFound when the user has no standing in the scope.
func (db *DB) GetMembershipByScopeAndUser(ctx context.Context, scopeID, userID uuid.UUID) (*models.Membership, error) {
	m, err := scanMembership(db.Pool.QueryRow(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE scope_id = $1 AND user_id = $2",
		scopeID, userID))
	if err != nil {
		return nil, readErr("get membership", err)
	}
	return m, nil
}

// CreateMembership appends a membership entry at the next free position.
// Duplicate (scope_id, user_id) pairs surface as ErrConflict.
func (db *DB) CreateMembership(ctx context.Context, m *models.Membership) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		return insertMembershipAtTail(ctx, tx, m)
	})
}

// insertMembershipAtTail assigns the next position within the scope and
// inserts the entry. Callers run it inside a transaction so the position
// computation and the insert see the same membership list.
func insertMembershipAtTail(ctx context.Context, tx pgx.Tx, m *models.Membership) error {
	err := tx.QueryRow(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM memberships WHERE scope_id = $1",
		m.ScopeID,
	).Scan(&m.Position)
	if err != nil {
		return fmt.Errorf("next membership position: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO memberships (id, scope_id, user_id, role, specialization, position, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.ScopeID, m.UserID, string(m.Role), m.Specialization, m.Position, m.JoinedAt)
	if err != nil {
		return writeErr("create membership", err)
	}
	return nil
}
