package service

import (
	"time"

	"questlink/internal/domain/entity"
)

// BearerClaims are the fields this client reads out of the backend's bearer
// token. The token stays opaque for authorization purposes; the claims are
// only used to pre-fill the local profile and to know when the session ends.
type BearerClaims struct {
	Subject   string
	Role      entity.Role
	Email     string
	Name      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// TokenInspector parses the backend bearer token client-side.
// It does not verify the signature: the backend owns the secret, the client
// only mirrors what the token says about its own session.
type TokenInspector interface {
	Inspect(tokenString string) (*BearerClaims, error)
}
