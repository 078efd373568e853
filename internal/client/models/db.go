// Package models defines the entities cached by the EduSync client.
package models

import (
	"strings"
	"time"
)

// Role is the canonical, upper-case role of an identity.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleFaculty Role = "FACULTY"
)

// NormalizeRole upper-cases r. Unknown roles are kept as given (upper-cased)
// so that a server-side addition does not break restore.
func NormalizeRole(r Role) Role {
	return Role(strings.ToUpper(strings.TrimSpace(string(r))))
}

// Identity is the authenticated principal.
type Identity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	AvatarRef   AvatarRef `json:"avatarRef,omitempty"`
}

// Normalized returns a copy of i with a canonical role.
func (i Identity) Normalized() Identity {
	i.Role = NormalizeRole(i.Role)
	return i
}

// Valid reports whether i carries the minimum fields of a usable identity.
func (i Identity) Valid() bool {
	return i.ID != "" && i.Email != ""
}

// SessionMarker records that an identity was issued a session.
type SessionMarker struct {
	// Token is the opaque session token returned by the auth API.
	Token string `json:"token"`

	// IssuedAt is when this client stored the marker.
	IssuedAt time.Time `json:"issuedAt"`

	// ExpiresAt is informational only; restore does not check it.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      Role   `json:"role" validate:"required,oneof=STUDENT FACULTY"`
}
