package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole is the role tag stored on a membership entry.
type MemberRole string

const (
	// MemberRoleOmni is a scope-level administrator below the owner.
	MemberRoleOmni MemberRole = "omni"
	// MemberRoleCrew is an ordinary member.
	MemberRoleCrew MemberRole = "crew"
)

// ValidMemberRoles returns all roles an invite or membership may carry.
func ValidMemberRoles() []MemberRole {
	return []MemberRole{MemberRoleOmni, MemberRoleCrew}
}

// IsValidMemberRole checks if the given role is a valid membership role.
func IsValidMemberRole(role string) bool {
	for _, r := range ValidMemberRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}

// Membership associates a user with a scope (organization or project).
// UserID is a soft reference: the store guarantees uniqueness of
// (scope_id, user_id) but not that the user still exists. Position
// preserves insertion order; the entry at position 0 of an organization
// is conventionally the owner.
type Membership struct {
	ID             uuid.UUID  `json:"id"`
	ScopeID        uuid.UUID  `json:"scope_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Role           MemberRole `json:"role"`
	Specialization *string    `json:"specialization,omitempty"`
	Position       int        `json:"position"`
	JoinedAt       time.Time  `json:"joined_at"`
}

// NewMembership creates a new Membership entry.
func NewMembership(scopeID, userID uuid.UUID, role MemberRole, specialization *string, position int) *Membership {
	return &Membership{
		ID:             uuid.New(),
		ScopeID:        scopeID,
		UserID:         userID,
		Role:           role,
		Specialization: specialization,
		Position:       position,
		JoinedAt:       time.Now(),
	}
}

// IsOmni returns true if the entry carries the elevated role tag.
func (m *Membership) IsOmni() bool {
	return m.Role == MemberRoleOmni
}
