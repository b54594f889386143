// Package models defines the domain models for Cortexa.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an identity record. Users are referenced by id from
// organizations and projects without storage-level enforcement.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given details.
func NewUser(email, name, title, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Title:        title,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
