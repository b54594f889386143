package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cortexahq/cortexa/internal/api/middleware"
	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProjectStore struct {
	org       *models.Organization
	members   []*models.Membership
	projects  []*models.Project
	created   *models.Project
	createErr error
}

func (m *mockProjectStore) GetOrganizationByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	if m.org != nil && m.org.ID == id {
		return m.org, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProjectStore) GetMembershipsByScopeID(_ context.Context, scopeID uuid.UUID) ([]*models.Membership, error) {
	return m.members, nil
}

func (m *mockProjectStore) CreateProject(_ context.Context, project *models.Project) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = project
	m.projects = append(m.projects, project)
	return nil
}

func (m *mockProjectStore) GetProjectsByOrgID(_ context.Context, orgID uuid.UUID) ([]*models.Project, error) {
	return m.projects, nil
}

func setupProjectRouter(store *mockProjectStore, callerID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, callerID)
	})
	NewProjectsHandler(store, zerolog.Nop()).RegisterRoutes(group)
	return r
}

func TestCreateProject(t *testing.T) {
	owner := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	store := &mockProjectStore{
		org:     org,
		members: []*models.Membership{models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0)},
	}
	r := setupProjectRouter(store, owner)

	body := `{"name": "Q3 Rollout", "profile": {"goals": "ship it", "aiMode": "assisted"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/organizations/"+org.ID.String()+"/projects", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Project *models.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "q3-rollout", resp.Project.Slug)
	assert.Equal(t, owner, resp.Project.CreatedBy)
	require.NotNil(t, resp.Project.Profile)
	assert.Equal(t, "ship it", resp.Project.Profile.Goals)

	require.NotNil(t, store.created)
	assert.Equal(t, org.ID, store.created.OrgID)
}

func TestCreateProjectAsGuestForbidden(t *testing.T) {
	owner := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	store := &mockProjectStore{
		org:     org,
		members: []*models.Membership{models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0)},
	}
	r := setupProjectRouter(store, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/organizations/"+org.ID.String()+"/projects", strings.NewReader(`{"name": "Side Gig"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, store.created)
}

func TestCreateProjectSlugConflict(t *testing.T) {
	owner := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	store := &mockProjectStore{
		org:       org,
		members:   []*models.Membership{models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0)},
		createErr: apperrors.ErrConflict,
	}
	r := setupProjectRouter(store, owner)

	req := httptest.NewRequest(http.MethodPost, "/api/organizations/"+org.ID.String()+"/projects", strings.NewReader(`{"name": "Q3 Rollout"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListProjects(t *testing.T) {
	owner := uuid.New()
	org := models.NewOrganization("Acme", "acme", owner)
	store := &mockProjectStore{
		org:     org,
		members: []*models.Membership{models.NewMembership(org.ID, owner, models.MemberRoleOmni, nil, 0)},
		projects: []*models.Project{
			models.NewProject(org.ID, "Q3 Rollout", "q3-rollout", owner, nil),
		},
	}
	r := setupProjectRouter(store, owner)

	req := httptest.NewRequest(http.MethodGet, "/api/organizations/"+org.ID.String()+"/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Projects []*models.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Projects, 1)
}
