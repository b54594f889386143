package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite is a single-use credential that bootstraps a membership in a
// scope. Its state machine is issued -> consumed (terminal) or
// issued -> expired (terminal, only when an expiry was requested).
// A consumed or expired invite can never be reissued under the same code.
type Invite struct {
	ID                    uuid.UUID  `json:"id"`
	Code                  string     `json:"code"`
	ScopeID               uuid.UUID  `json:"scope_id"`
	Email                 string     `json:"email,omitempty"`
	InvitedRole           MemberRole `json:"invitedRole"`
	InvitedSpecialization *string    `json:"invitedSpecialization,omitempty"`
	CreatedBy             uuid.UUID  `json:"created_by"`
	Consumed              bool       `json:"consumed"`
	ConsumedBy            *uuid.UUID `json:"consumed_by,omitempty"`
	ConsumedAt            *time.Time `json:"consumed_at,omitempty"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// NewInvite creates a new unconsumed Invite. expiresAt is nil unless the
// issuer explicitly requested an expiry.
func NewInvite(scopeID uuid.UUID, code, email string, role MemberRole, specialization *string, createdBy uuid.UUID, expiresAt *time.Time) *Invite {
	return &Invite{
		ID:                    uuid.New(),
		Code:                  code,
		ScopeID:               scopeID,
		Email:                 email,
		InvitedRole:           role,
		InvitedSpecialization: specialization,
		CreatedBy:             createdBy,
		ExpiresAt:             expiresAt,
		CreatedAt:             time.Now(),
	}
}

// IsExpired returns true if the invite carried an expiry that has passed.
// Invites without an expiry never expire.
func (i *Invite) IsExpired() bool {
	return i.ExpiresAt != nil && time.Now().After(*i.ExpiresAt)
}

// IsRedeemable returns true if the invite is neither consumed nor expired.
func (i *Invite) IsRedeemable() bool {
	return !i.Consumed && !i.IsExpired()
}
