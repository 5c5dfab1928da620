// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"questlink/internal/domain/entity"
)

// CredentialRepository is the device-local store for the bearer credential
// and the profile delivered with it. The two are written and removed together:
// after Save or Clear return there is no observable window where only one of
// them exists.
type CredentialRepository interface {
	// Load returns the current credential and profile from cache.
	// It never fails; ok is false when the device is logged out.
	Load() (entity.Credential, entity.UserProfile, bool)

	// Save atomically persists the credential and profile, replacing any
	// previous pair (re-login overwrites).
	Save(ctx context.Context, cred entity.Credential, profile entity.UserProfile) error

	// Clear atomically removes both. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
