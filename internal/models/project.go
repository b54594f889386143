package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectTimeline describes the planning window of a project profile.
type ProjectTimeline struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Squad is a named sub-team inside a project profile.
type Squad struct {
	Name       string `json:"name"`
	TargetDate string `json:"targetDate,omitempty"`
}

// ProjectProfile holds the strategic data that lives exclusively on the
// project side of the tenancy boundary.
type ProjectProfile struct {
	Goals     string           `json:"goals,omitempty"`
	Risks     []string         `json:"risks,omitempty"`
	Timeline  *ProjectTimeline `json:"timeline,omitempty"`
	Structure string           `json:"structure,omitempty"`
	AIMode    string           `json:"aiMode,omitempty"`
	Squads    []Squad          `json:"squads,omitempty"`
	Tools     map[string]bool  `json:"tools,omitempty"`
}

// Project is scoped under exactly one organization. OrgID and CreatedBy
// are soft references audited by the integrity verifier. Slug is unique
// only within the organization.
type Project struct {
	ID        uuid.UUID       `json:"id"`
	OrgID     uuid.UUID       `json:"org_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	CreatedBy uuid.UUID       `json:"created_by"`
	Profile   *ProjectProfile `json:"profile,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewProject creates a new Project under orgID created by createdBy.
func NewProject(orgID uuid.UUID, name, slug string, createdBy uuid.UUID, profile *ProjectProfile) *Project {
	now := time.Now()
	return &Project{
		ID:        uuid.New(),
		OrgID:     orgID,
		Name:      name,
		Slug:      slug,
		CreatedBy: createdBy,
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
