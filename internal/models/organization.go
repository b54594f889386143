package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant root. OwnerID is a soft reference to a User:
// the store does not enforce it, and the integrity verifier audits it.
//
// Organizations never carry a profile subdocument; strategic profile data
// lives exclusively on projects. Legacy records that still hold a
// "profile" key inside Settings are stripped at the context-resolution
// boundary.
type Organization struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	OwnerID   uuid.UUID      `json:"owner_id"`
	Industry  string         `json:"industry,omitempty"`
	Size      string         `json:"size,omitempty"`
	Country   string         `json:"country,omitempty"`
	Services  []string       `json:"services,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewOrganization creates a new Organization owned by ownerID.
func NewOrganization(name, slug string, ownerID uuid.UUID) *Organization {
	now := time.Now()
	return &Organization{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StripProfile removes a legacy "profile" key from Settings. Returns true
// if a key was present and removed.
func (o *Organization) StripProfile() bool {
	if o.Settings == nil {
		return false
	}
	if _, ok := o.Settings["profile"]; !ok {
		return false
	}
	delete(o.Settings, "profile")
	if len(o.Settings) == 0 {
		o.Settings = nil
	}
	return true
}

// Slugify converts a display name into a URL-safe slug. Names with no
// usable characters fall back to a random token so two all-symbol names
// never collide on an empty slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	return slug
}
