package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const inviteColumns = "id, code, scope_id, email, invited_role, invited_specialization, created_by, consumed, consumed_by, consumed_at, expires_at, created_at"

func scanInvite(row pgx.Row) (*models.Invite, error) {
	var inv models.Invite
	var roleStr string
	err := row.Scan(
		&inv.ID, &inv.Code, &inv.ScopeID, &inv.Email, &roleStr,
		&inv.InvitedSpecialization, &inv.CreatedBy, &inv.Consumed,
		&inv.ConsumedBy, &inv.ConsumedAt, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.InvitedRole = models.MemberRole(roleStr)
	return &inv, nil
}

// CreateInvite persists a new invite. A code collision surfaces as
// ErrConflict; the issuing service regenerates and retries.
func (db *DB) CreateInvite(ctx context.Context, inv *models.Invite) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO invites (id, code, scope_id, email, invited_role, invited_specialization, created_by, consumed, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, inv.ID, inv.Code, inv.ScopeID, inv.Email, string(inv.InvitedRole),
		inv.InvitedSpecialization, inv.CreatedBy, inv.Consumed, inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		return writeErr("create invite", err)
	}
	return nil
}

// GetInviteByCode returns an invite by its code.
func (db *DB) GetInviteByCode(ctx context.Context, code string) (*models.Invite, error) {
	inv, err := scanInvite(db.Pool.QueryRow(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE code = $1", code))
	if err != nil {
		return nil, readErr("get invite by code", err)
	}
	return inv, nil
}

// GetInvitesByScopeID returns all pending invites for a scope.
func (db *DB) GetInvitesByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Invite, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE scope_id = $1 AND consumed = FALSE ORDER BY created_at", scopeID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// RedeemInvite marks the invite consumed and appends the membership in a
// single transaction. The consumed flag is flipped by one conditional
// UPDATE, so concurrent redemptions of the same code resolve to exactly
// one winner; the loser observes the already-set flag and receives
// ErrInviteAlreadyUsed.
func (db *DB) RedeemInvite(ctx context.Context, code string, userID uuid.UUID) (*models.Invite, *models.Membership, error) {
	var invite *models.Invite
	var membership *models.Membership

	err := db.ExecTx(ctx, func(tx pgx.Tx) error {
		inv, err := scanInvite(tx.QueryRow(ctx, `
			UPDATE invites
			SET consumed = TRUE, consumed_by = $2, consumed_at = $3
			WHERE code = $1 AND consumed = FALSE AND (expires_at IS NULL OR expires_at > $3)
			RETURNING `+inviteColumns, code, userID, time.Now()))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return classifyRedeemFailure(ctx, tx, code)
			}
			return fmt.Errorf("consume invite: %w", err)
		}

		m := models.NewMembership(inv.ScopeID, userID, inv.InvitedRole, inv.InvitedSpecialization, 0)
		if err := insertMembershipAtTail(ctx, tx, m); err != nil {
			return err
		}

		invite = inv
		membership = m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return invite, membership, nil
}

// classifyRedeemFailure distinguishes why the conditional update matched
// nothing: bad code, consumed flag already set, or expiry passed.
func classifyRedeemFailure(ctx context.Context, tx pgx.Tx, code string) error {
	var consumed bool
	var expiresAt *time.Time
	err := tx.QueryRow(ctx,
		"SELECT consumed, expires_at FROM invites WHERE code = $1", code,
	).Scan(&consumed, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInviteNotFound
		}
		return fmt.Errorf("classify redeem failure: %w", err)
	}
	if consumed {
		return apperrors.ErrInviteAlreadyUsed
	}
	if expiresAt != nil && time.Now().After(*expiresAt) {
		return apperrors.ErrInviteExpired
	}
	// The invite became redeemable between the update and this read;
	// treat the attempt as lost to a concurrent winner.
	return apperrors.ErrInviteAlreadyUsed
}
