// Package model defines domain entities for the application.
package model

import (
	"slices"
	"strings"
	"time"
)

// Role constants gate which dashboard and routes a user can reach.
const (
	RoleLandlord = "landlord"
	RoleTenant   = "tenant"
	RoleAdmin    = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleLandlord, RoleTenant, RoleAdmin}

// IsValidRole reports whether role is a known role string.
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}

// User represents an account that can sign in.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthContext holds the authenticated caller.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller has the admin role.
func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IsLandlord reports whether the caller has the landlord role.
func (a *AuthContext) IsLandlord() bool {
	return a != nil && a.Role == RoleLandlord
}

// IsTenant reports whether the caller has the tenant role.
func (a *AuthContext) IsTenant() bool {
	return a != nil && a.Role == RoleTenant
}
