package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cortexahq/cortexa/internal/api/middleware"
	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/invites"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInviteBackend struct {
	created    *models.Invite
	redeemErr  error
	membership *models.Membership
}

func (m *mockInviteBackend) CreateInvite(_ context.Context, inv *models.Invite) error {
	m.created = inv
	return nil
}

func (m *mockInviteBackend) GetInviteByCode(_ context.Context, code string) (*models.Invite, error) {
	return nil, apperrors.ErrInviteNotFound
}

func (m *mockInviteBackend) GetInvitesByScopeID(_ context.Context, scopeID uuid.UUID) ([]*models.Invite, error) {
	return nil, nil
}

func (m *mockInviteBackend) RedeemInvite(_ context.Context, code string, userID uuid.UUID) (*models.Invite, *models.Membership, error) {
	if m.redeemErr != nil {
		return nil, nil, m.redeemErr
	}
	return m.created, m.membership, nil
}

type mockScopeStore struct {
	org     *models.Organization
	orgErr  error
	members []*models.Membership
}

func (m *mockScopeStore) GetOrganizationByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	if m.orgErr != nil {
		return nil, m.orgErr
	}
	if m.org != nil && m.org.ID == id {
		return m.org, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockScopeStore) GetProjectByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	return nil, apperrors.ErrNotFound
}

func (m *mockScopeStore) GetMembershipsByScopeID(_ context.Context, scopeID uuid.UUID) ([]*models.Membership, error) {
	return m.members, nil
}

func setupInviteRouter(backend *mockInviteBackend, scope *mockScopeStore, callerID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, callerID)
	})
	service := invites.NewService(backend, zerolog.Nop())
	NewInvitesHandler(service, scope, zerolog.Nop()).RegisterRoutes(group)
	return r
}

func inviteJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateInviteAsOwner(t *testing.T) {
	owner := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	backend := &mockInviteBackend{}
	scope := &mockScopeStore{
		org:     org,
		members: []*models.Membership{models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0)},
	}
	r := setupInviteRouter(backend, scope, owner)

	w := inviteJSON(r, "/api/invites", `{"scopeId": "`+org.ID.String()+`", "email": "new@acme.test", "role": "crew"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Invite *models.Invite `json:"invite"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Invite.Code)
	assert.Equal(t, models.MemberRoleCrew, resp.Invite.InvitedRole)
	require.NotNil(t, backend.created)
}

func TestCreateInviteAsCrewForbidden(t *testing.T) {
	owner := uuid.New()
	crew := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	scope := &mockScopeStore{
		org: org,
		members: []*models.Membership{
			models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0),
			models.NewMembership(org.ID, crew, models.MemberRoleCrew, nil, 1),
		},
	}
	r := setupInviteRouter(&mockInviteBackend{}, scope, crew)

	w := inviteJSON(r, "/api/invites", `{"scopeId": "`+org.ID.String()+`", "email": "new@acme.test"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateInviteInvalidRole(t *testing.T) {
	owner := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	scope := &mockScopeStore{
		org:     org,
		members: []*models.Membership{models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0)},
	}
	r := setupInviteRouter(&mockInviteBackend{}, scope, owner)

	w := inviteJSON(r, "/api/invites", `{"scopeId": "`+org.ID.String()+`", "email": "new@acme.test", "role": "org_admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateInviteScopeLookupError(t *testing.T) {
	// A failing organization lookup must surface as a server error, not
	// fall through to the project branch and report the scope missing.
	scope := &mockScopeStore{orgErr: errors.New("connection reset")}
	r := setupInviteRouter(&mockInviteBackend{}, scope, uuid.New())

	w := inviteJSON(r, "/api/invites", `{"scopeId": "`+uuid.New().String()+`", "email": "new@acme.test"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateInviteUnknownScope(t *testing.T) {
	r := setupInviteRouter(&mockInviteBackend{}, &mockScopeStore{}, uuid.New())

	w := inviteJSON(r, "/api/invites", `{"scopeId": "`+uuid.New().String()+`", "email": "new@acme.test"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedeemInvite(t *testing.T) {
	caller := uuid.New()
	scopeID := uuid.New()
	backend := &mockInviteBackend{
		created:    models.NewInvite(scopeID, "ABCD2345", "new@acme.test", models.MemberRoleCrew, nil, uuid.New(), nil),
		membership: models.NewMembership(scopeID, caller, models.MemberRoleCrew, nil, 3),
	}
	r := setupInviteRouter(backend, &mockScopeStore{}, caller)

	w := inviteJSON(r, "/api/invites/redeem", `{"code": "ABCD2345"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool               `json:"success"`
		Membership *models.Membership `json:"membership"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, caller, resp.Membership.UserID)
}

func TestRedeemInviteErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", apperrors.ErrInviteNotFound, http.StatusNotFound},
		{"already used", apperrors.ErrInviteAlreadyUsed, http.StatusConflict},
		{"expired", apperrors.ErrInviteExpired, http.StatusGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupInviteRouter(&mockInviteBackend{redeemErr: tt.err}, &mockScopeStore{}, uuid.New())
			w := inviteJSON(r, "/api/invites/redeem", `{"code": "ABCD2345"}`)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
