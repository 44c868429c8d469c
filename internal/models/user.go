package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account provisioned from the OIDC provider on first login.
// Provider claims are the source of truth for profile fields; rows are
// refreshed via SyncProfile whenever a verified token disagrees.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	Name          *string   `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SyncProfile applies the email and name from a verified token, reporting
// whether anything changed and the row needs persisting. An empty name never
// clears a stored one.
func (u *User) SyncProfile(email, name string) bool {
	changed := false
	if email != "" && u.Email != email {
		u.Email = email
		changed = true
	}
	if name != "" && (u.Name == nil || *u.Name != name) {
		u.Name = &name
		changed = true
	}
	return changed
}
