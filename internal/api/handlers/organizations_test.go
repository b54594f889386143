package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cortexahq/cortexa/internal/apperrors"
	"github.com/cortexahq/cortexa/internal/auth"
	"github.com/cortexahq/cortexa/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrgStore struct {
	registered *models.Organization
	user       *models.User
	createErr  error
}

func (m *mockOrgStore) RegisterOrganization(_ context.Context, user *models.User, org *models.Organization) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.user = user
	m.registered = org
	return nil
}

func setupOrgRouter(store *mockOrgStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	h := NewOrganizationsHandler(store, tokens, zerolog.Nop())
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrganization(t *testing.T) {
	store := &mockOrgStore{}
	r := setupOrgRouter(store)

	w := postJSON(r, "/api/organizations", `{
		"name": "Acme Corp",
		"industry": "logistics",
		"size": "11-50",
		"country": "DE",
		"services": ["analytics"],
		"adminName": "Ada Admin",
		"adminEmail": "ada@acme.test",
		"adminRole": "CTO",
		"password": "long-enough-password"
	}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateOrgResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@acme.test", resp.User.Email)
	assert.Equal(t, "acme-corp", resp.Organization.Slug)
	assert.Equal(t, resp.User.ID, resp.Organization.OwnerID)

	require.NotNil(t, store.user)
	assert.NotEqual(t, "long-enough-password", store.user.PasswordHash)
	assert.Equal(t, "logistics", store.registered.Industry)
}

func TestCreateOrganizationIgnoresProfile(t *testing.T) {
	store := &mockOrgStore{}
	r := setupOrgRouter(store)

	w := postJSON(r, "/api/organizations", `{
		"name": "Acme Corp",
		"adminName": "Ada Admin",
		"adminEmail": "ada@acme.test",
		"password": "long-enough-password",
		"profile": {"goals": "should never be stored"}
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, store.registered.Settings)

	body := w.Body.String()
	assert.NotContains(t, body, "should never be stored")
}

func TestCreateOrganizationSlugConflict(t *testing.T) {
	store := &mockOrgStore{createErr: apperrors.ErrConflict}
	r := setupOrgRouter(store)

	w := postJSON(r, "/api/organizations", `{
		"name": "Acme Corp",
		"adminName": "Ada Admin",
		"adminEmail": "ada@acme.test",
		"password": "long-enough-password"
	}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateOrganizationInvalidBody(t *testing.T) {
	r := setupOrgRouter(&mockOrgStore{})

	w := postJSON(r, "/api/organizations", `{"name": "Acme Corp"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrganizationShortPassword(t *testing.T) {
	r := setupOrgRouter(&mockOrgStore{})

	w := postJSON(r, "/api/organizations", `{
		"name": "Acme Corp",
		"adminName": "Ada Admin",
		"adminEmail": "ada@acme.test",
		"password": "short"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
