// Package invites manages the lifecycle of single-use invite codes.
package invites

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/metrics"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/cortexahq/cortexa/internal/tenancy"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// codeLength is the invite code length in characters.
const codeLength = 8

// codeAlphabet omits characters that read ambiguously (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// maxCodeAttempts bounds the generate-and-retry loop on code collisions.
// The code space holds ~2^40 values, so exhausting the limit means the
// store is misbehaving, not that the space is full.
const maxCodeAttempts = 5

// Store defines the interface for invite persistence operations.
type Store interface {
	CreateInvite(ctx context.Context, inv *models.Invite) error
	GetInviteByCode(ctx context.Context, code string) (*models.Invite, error)
	GetInvitesByScopeID(ctx context.Context, scopeID uuid.UUID) ([]*models.Invite, error)
	RedeemInvite(ctx context.Context, code string, userID uuid.UUID) (*models.Invite, *models.Membership, error)
}

// IssueRequest describes an invite to be issued.
type IssueRequest struct {
	ScopeID        uuid.UUID
	IssuerID       uuid.UUID
	IssuerRole     tenancy.Role
	Email          string
	Role           models.MemberRole
	Specialization *string
	// TTL of zero means the invite does not expire until used.
	TTL time.Duration
}

// Service handles invite issue and redemption.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a new invite Service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "invite_service").Logger(),
	}
}

// GenerateCode generates a random invite code.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Issue creates a new invite for the scope. Only org_admin and omni
// callers may issue. Uniqueness of the code is guaranteed by the store's
// constraint: on a collision the code is regenerated, bounded by
// maxCodeAttempts.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.Invite, error) {
	if !req.IssuerRole.CanIssueInvites() {
		return nil, apperrors.ErrForbidden
	}

	role := req.Role
	if role == "" {
		role = models.MemberRoleCrew
	}
	if !models.IsValidMemberRole(string(role)) {
		return nil, fmt.Errorf("invalid invite role: %s", role)
	}

	var expiresAt *time.Time
	if req.TTL > 0 {
		t := time.Now().Add(req.TTL)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}

		inv := models.NewInvite(req.ScopeID, code, req.Email, role, req.Specialization, req.IssuerID, expiresAt)
		err = s.store.CreateInvite(ctx, inv)
		if err == nil {
			metrics.InvitesIssued.Inc()
			s.logger.Info().
				Str("invite_id", inv.ID.String()).
				Str("scope_id", req.ScopeID.String()).
				Str("role", string(role)).
				Str("issued_by", req.IssuerID.String()).
				Msg("invite issued")
			return inv, nil
		}
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Warn().Int("attempt", attempt+1).Msg("invite code collision, regenerating")
			continue
		}
		return nil, fmt.Errorf("store invite: %w", err)
	}

	return nil, apperrors.ErrCodeSpaceExhausted
}

// Redeem consumes an invite and creates the membership it encodes. The
// check-and-set is a single storage operation; when two redemptions race
// on the same code exactly one succeeds and the other receives
// ErrInviteAlreadyUsed. Failures are terminal per attempt and never
// auto-retried.
func (s *Service) Redeem(ctx context.Context, code string, userID uuid.UUID) (*models.Membership, error) {
	inv, membership, err := s.store.RedeemInvite(ctx, code, userID)
	if err != nil {
		metrics.InvitesRedeemed.WithLabelValues(redeemOutcome(err)).Inc()
		return nil, err
	}
	if inv == nil || membership == nil {
		metrics.InvitesRedeemed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("redeem invite: store returned incomplete result")
	}

	metrics.InvitesRedeemed.WithLabelValues("success").Inc()
	s.logger.Info().
		Str("invite_id", inv.ID.String()).
		Str("scope_id", inv.ScopeID.String()).
		Str("user_id", userID.String()).
		Str("role", string(inv.InvitedRole)).
		Msg("invite redeemed")
	return membership, nil
}

// GetPending returns the unconsumed invites for a scope.
func (s *Service) GetPending(ctx context.Context, scopeID uuid.UUID) ([]*models.Invite, error) {
	return s.store.GetInvitesByScopeID(ctx, scopeID)
}

func redeemOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInviteNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInviteExpired):
		return "expired"
	case errors.Is(err, apperrors.ErrInviteAlreadyUsed):
		return "already_used"
	default:
		return "error"
	}
}
