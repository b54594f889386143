// Package tenancy resolves the scope context and effective role for every
// tenant-scoped request.
package tenancy

import (
	"time"

	"github.com/cortexahq/cortexa/internal/models"
	"github.com/google/uuid"
)

// Role is a caller's effective role inside a scope, computed from the
// scope's owner reference and membership list. It is distinct from the
// role tag stored on a membership entry.
type Role string

const (
	// RoleOrgAdmin is the highest tier: the scope's owner or creator.
	RoleOrgAdmin Role = "org_admin"
	// RoleOmni is a scope-level administrator below the owner.
	RoleOmni Role = "omni"
	// RoleCrew is an ordinary member.
	RoleCrew Role = "crew"
	// RoleGuest means the caller has no standing in the scope.
	RoleGuest Role = "guest"
)

// RoleResolution is the output of membership role resolution.
type RoleResolution struct {
	Role           Role `json:"role"`
	CanSeeFullInfo bool `json:"canSeeFullInfo"`
}

// ResolveRole classifies a caller against a scope's denormalized
// membership data. ownerID is the scope's owner/creator reference and
// members the ordered membership list (position-0 entry first).
//
// Classification operates on the membership records alone: an entry whose
// user id no longer resolves to a user is still classified normally.
// Existence checking belongs to the integrity verifier.
func ResolveRole(ownerID uuid.UUID, members []*models.Membership, callerID uuid.UUID) RoleResolution {
	if callerID == ownerID {
		return RoleResolution{Role: RoleOrgAdmin, CanSeeFullInfo: true}
	}
	if len(members) > 0 && members[0].UserID == callerID {
		// The first entry is conventionally the owner even when the
		// owner reference has drifted.
		return RoleResolution{Role: RoleOrgAdmin, CanSeeFullInfo: true}
	}
	for _, m := range members {
		if m.UserID != callerID {
			continue
		}
		if m.IsOmni() {
			return RoleResolution{Role: RoleOmni, CanSeeFullInfo: true}
		}
		return RoleResolution{Role: RoleCrew, CanSeeFullInfo: false}
	}
	return RoleResolution{Role: RoleGuest, CanSeeFullInfo: false}
}

// CanIssueInvites reports whether the role may issue invite codes.
func (r Role) CanIssueInvites() bool {
	return r == RoleOrgAdmin || r == RoleOmni
}

// Member is a membership entry prepared for listing to a caller. Email
// and JoinedAt are sensitive: they are populated only when the viewer's
// canSeeFullInfo flag allows it, so lower-privileged callers never
// receive them even transiently.
type Member struct {
	UserID         uuid.UUID         `json:"user_id"`
	Name           string            `json:"name,omitempty"`
	Email          string            `json:"email,omitempty"`
	Role           models.MemberRole `json:"role"`
	Specialization *string           `json:"specialization,omitempty"`
	JoinedAt       *time.Time        `json:"joinedAt,omitempty"`
}

// buildMembers joins membership entries with their user records and
// applies the field-level redaction policy. Entries with dangling user
// references are listed with the fields the membership itself carries.
func buildMembers(members []*models.Membership, users map[uuid.UUID]*models.User, canSeeFullInfo bool) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		member := Member{
			UserID:         m.UserID,
			Role:           m.Role,
			Specialization: m.Specialization,
		}
		if u := users[m.UserID]; u != nil {
			member.Name = u.Name
		}
		if canSeeFullInfo {
			if u := users[m.UserID]; u != nil {
				member.Email = u.Email
			}
			joined := m.JoinedAt
			member.JoinedAt = &joined
		}
		out = append(out, member)
	}
	return out
}
