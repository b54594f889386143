package invites

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/cortexahq/cortexa/internal/tenancy"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInviteStore implements Store with the same conditional-redeem
// semantics the real store provides.
type mockInviteStore struct {
	invites     map[string]*models.Invite // keyed by code
	memberships []*models.Membership

	conflictsBeforeInsert int // simulate code collisions
	createCalls           int
}

func newMockInviteStore() *mockInviteStore {
	return &mockInviteStore{invites: make(map[string]*models.Invite)}
}

func (s *mockInviteStore) CreateInvite(_ context.Context, inv *models.Invite) error {
	s.createCalls++
	if s.conflictsBeforeInsert > 0 {
		s.conflictsBeforeInsert--
		return apperrors.ErrConflict
	}
	if _, exists := s.invites[inv.Code]; exists {
		return apperrors.ErrConflict
	}
	s.invites[inv.Code] = inv
	return nil
}

func (s *mockInviteStore) GetInviteByCode(_ context.Context, code string) (*models.Invite, error) {
	inv, ok := s.invites[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return inv, nil
}

func (s *mockInviteStore) GetInvitesByScopeID(_ context.Context, scopeID uuid.UUID) ([]*models.Invite, error) {
	var out []*models.Invite
	for _, inv := range s.invites {
		if inv.ScopeID == scopeID && !inv.Consumed {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *mockInviteStore) RedeemInvite(_ context.Context, code string, userID uuid.UUID) (*models.Invite, *models.Membership, error) {
	inv, ok := s.invites[code]
	if !ok {
		return nil, nil, apperrors.ErrInviteNotFound
	}
	if inv.Consumed {
		return nil, nil, apperrors.ErrInviteAlreadyUsed
	}
	if inv.IsExpired() {
		return nil, nil, apperrors.ErrInviteExpired
	}
	now := time.Now()
	inv.Consumed = true
	inv.ConsumedBy = &userID
	inv.ConsumedAt = &now

	m := models.NewMembership(inv.ScopeID, userID, inv.InvitedRole, inv.InvitedSpecialization, len(s.memberships))
	s.memberships = append(s.memberships, m)
	return inv, m, nil
}

func newTestService(s *mockInviteStore) *Service {
	return NewService(s, zerolog.Nop())
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q", r)
		}
		seen[code] = true
	}
	// 100 draws from a 2^40 space should not collide.
	assert.Len(t, seen, 100)
}

func TestIssue_RequiresElevatedRole(t *testing.T) {
	svc := newTestService(newMockInviteStore())

	for _, role := range []tenancy.Role{tenancy.RoleCrew, tenancy.RoleGuest} {
		_, err := svc.Issue(context.Background(), IssueRequest{
			ScopeID:    uuid.New(),
			IssuerID:   uuid.New(),
			IssuerRole: role,
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "role %s must not issue invites", role)
	}
}

func TestIssue_DefaultsToCrewWithoutExpiry(t *testing.T) {
	store := newMockInviteStore()
	svc := newTestService(store)

	inv, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:    uuid.New(),
		IssuerID:   uuid.New(),
		IssuerRole: tenancy.RoleOrgAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MemberRoleCrew, inv.InvitedRole)
	assert.Nil(t, inv.ExpiresAt, "invites do not expire unless requested")
	assert.False(t, inv.Consumed)
	assert.Len(t, inv.Code, codeLength)
}

func TestIssue_InvalidRole(t *testing.T) {
	svc := newTestService(newMockInviteStore())

	_, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:    uuid.New(),
		IssuerID:   uuid.New(),
		IssuerRole: tenancy.RoleOmni,
		Role:       "org_admin",
	})
	require.Error(t, err)
}

func TestIssue_RetriesOnCollision(t *testing.T) {
	store := newMockInviteStore()
	store.conflictsBeforeInsert = 2
	svc := newTestService(store)

	inv, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:    uuid.New(),
		IssuerID:   uuid.New(),
		IssuerRole: tenancy.RoleOmni,
	})
	require.NoError(t, err)
	assert.NotNil(t, inv)
	assert.Equal(t, 3, store.createCalls, "two collisions then success")
}

func TestIssue_CollisionLimitExhausted(t *testing.T) {
	store := newMockInviteStore()
	store.conflictsBeforeInsert = maxCodeAttempts
	svc := newTestService(store)

	_, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:    uuid.New(),
		IssuerID:   uuid.New(),
		IssuerRole: tenancy.RoleOrgAdmin,
	})
	assert.ErrorIs(t, err, apperrors.ErrCodeSpaceExhausted)
	assert.Equal(t, maxCodeAttempts, store.createCalls)
}

func TestRedeem_CreatesMembershipWithInvitedRole(t *testing.T) {
	store := newMockInviteStore()
	svc := newTestService(store)
	scopeID := uuid.New()
	spec := "Researcher"

	inv, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:        scopeID,
		IssuerID:       uuid.New(),
		IssuerRole:     tenancy.RoleOrgAdmin,
		Role:           models.MemberRoleCrew,
		Specialization: &spec,
	})
	require.NoError(t, err)

	userID := uuid.New()
	m, err := svc.Redeem(context.Background(), inv.Code, userID)
	require.NoError(t, err)
	assert.Equal(t, scopeID, m.ScopeID)
	assert.Equal(t, userID, m.UserID)
	assert.Equal(t, models.MemberRoleCrew, m.Role)
	require.NotNil(t, m.Specialization)
	assert.Equal(t, "Researcher", *m.Specialization)
}

func TestRedeem_SecondAttemptFails(t *testing.T) {
	store := newMockInviteStore()
	svc := newTestService(store)

	inv, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:    uuid.New(),
		IssuerID:   uuid.New(),
		IssuerRole: tenancy.RoleOrgAdmin,
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), inv.Code, uuid.New())
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), inv.Code, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInviteAlreadyUsed)
	assert.Len(t, store.memberships, 1, "a lost redemption must not create a membership")
}

func TestRedeem_UnknownCode(t *testing.T) {
	svc := newTestService(newMockInviteStore())

	_, err := svc.Redeem(context.Background(), "NOPE1234", uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInviteNotFound)
}

func TestRedeem_Expired(t *testing.T) {
	store := newMockInviteStore()
	svc := newTestService(store)

	inv, err := svc.Issue(context.Background(), IssueRequest{
		ScopeID:    uuid.New(),
		IssuerID:   uuid.New(),
		IssuerRole: tenancy.RoleOrgAdmin,
		TTL:        time.Nanosecond,
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = svc.Redeem(context.Background(), inv.Code, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInviteExpired)

	// Expiry is terminal: the invite stays unredeemable.
	_, err = svc.Redeem(context.Background(), inv.Code, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInviteExpired)
}

// emptyRedeemStore answers a redeem with no invite, no membership and no
// error, which a correct store never does.
type emptyRedeemStore struct{ *mockInviteStore }

func (s emptyRedeemStore) RedeemInvite(context.Context, string, uuid.UUID) (*models.Invite, *models.Membership, error) {
	return nil, nil, nil
}

func TestRedeem_IncompleteStoreResult(t *testing.T) {
	svc := NewService(emptyRedeemStore{newMockInviteStore()}, zerolog.Nop())

	m, err := svc.Redeem(context.Background(), "ABCD2345", uuid.New())
	require.Error(t, err)
	assert.Nil(t, m)
}
