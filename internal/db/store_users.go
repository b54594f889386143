package db

import (
	"context"
	"fmt"

	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
)

// CreateUser creates a new user. Duplicate emails surface as ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, name, title, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.Name, user.Title, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return writeErr("create user", err)
	}
	return nil
}

// GetUserByID returns a user by their ID.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, name, title, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Title,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, readErr("get user by ID", err)
	}
	return &user, nil
}

// GetUserByEmail returns a user by their email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, name, title, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.Title,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, readErr("get user by email", err)
	}
	return &user, nil
}

// UserExists reports whether a user record with the given ID exists.
func (db *DB) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// GetUsersByIDs returns the user records for the given ids. Ids without a
// matching record are simply absent from the result; dangling membership
// references are expected and handled by callers.
func (db *DB) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, email, name, title, password_hash, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Title,
			&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// FilterExistingUsers returns the subset of ids that resolve to user records.
func (db *DB) FilterExistingUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := db.Pool.Query(ctx, "SELECT id FROM users WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("filter existing users: %w", err)
	}
	defer rows.Close()

	existing := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}
