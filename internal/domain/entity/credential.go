// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// Role tags what kind of account the logged-in user holds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleShop     Role = "shop"
	RolePartner  Role = "partner"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the fixed set the backend issues.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleShop, RolePartner, RoleAdmin:
		return true
	}

	return false
}

// Credential is the opaque bearer token the backend issued at login.
// At most one credential is active per device; absence means "logged out".
type Credential struct {
	Token    string    // The raw bearer token attached to every authenticated request.
	IssuedAt time.Time // When the token was stored on this device.
}

// UserProfile is the basic profile delivered alongside the credential.
// It is owned by the credential store and read-only everywhere else.
type UserProfile struct {
	ID          string    // Backend user identifier (the token's subject).
	DisplayName string    // Name shown in the account screens.
	Email       string    // Login email.
	Role        Role      // Account role tag.
	CreatedAt   time.Time // Account creation timestamp reported by the backend.
}
