package db

import (
	"errors"
	"fmt"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// writeErr translates storage-level write failures into the shared error
// taxonomy. Unique violations become ErrConflict so callers can retry
// with a different value (invite codes) or surface the conflict (slugs,
// emails) instead of silently substituting one. Everything else is
// wrapped with the operation name.
func writeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperrors.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

// readErr translates row absence into ErrNotFound and wraps everything else.
func readErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
