// Package apperrors defines the sentinel errors shared across the Cortexa core.
package apperrors

import "errors"

var (
	// ErrConflict indicates a storage-level uniqueness violation (slug, email, invite code).
	ErrConflict = errors.New("conflict: unique constraint violated")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller lacks the required role for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrOrphanedProject indicates a project whose organization no longer resolves.
	// This is a data-integrity error, not a plain not-found.
	ErrOrphanedProject = errors.New("orphaned project: organization reference is dangling")

	// ErrIntegrity indicates a dangling owner or creator reference detected
	// during verification or context resolution.
	ErrIntegrity = errors.New("integrity error: dangling reference")

	// ErrInviteNotFound indicates the invite code does not exist.
	ErrInviteNotFound = errors.New("invite not found")

	// ErrInviteExpired indicates the invite carried an expiry that has passed.
	ErrInviteExpired = errors.New("invite expired")

	// ErrInviteAlreadyUsed indicates the invite's consumed flag is already set.
	// Redemption races resolve to exactly one winner; losers receive this error.
	ErrInviteAlreadyUsed = errors.New("invite already used")

	// ErrCodeSpaceExhausted indicates invite code generation kept colliding
	// past the retry limit. With 40 bits of code entropy this is effectively
	// unreachable outside of a misbehaving store.
	ErrCodeSpaceExhausted = errors.New("invite code generation exhausted retry limit")
)
