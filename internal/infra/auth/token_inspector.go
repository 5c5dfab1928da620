// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"questlink/internal/domain/entity"
	"questlink/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// bearerClaims mirrors the claims the backend puts into its access tokens.
type bearerClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// jwtInspector reads the backend bearer token without verifying it.
// The signature belongs to the backend; the client only mirrors what the
// token says about its own session (subject, role, expiry).
type jwtInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector is the constructor for jwtInspector.
func NewTokenInspector() service.TokenInspector {
	return &jwtInspector{parser: jwt.NewParser()}
}

// Inspect parses the token and extracts the claims this client cares about.
func (i *jwtInspector) Inspect(tokenString string) (*service.BearerClaims, error) {
	claims := &bearerClaims{}
	if _, _, err := i.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Wrap(err, "parse bearer token")
	}

	role := entity.Role(claims.Role)
	if !role.Valid() {
		role = entity.RoleCustomer
	}

	out := &service.BearerClaims{
		Subject: claims.Subject,
		Role:    role,
		Email:   claims.Email,
		Name:    claims.Name,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	return out, nil
}

// Expired reports whether the claims describe a session that already ended.
func Expired(claims *service.BearerClaims, now time.Time) bool {
	return !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(now)
}
