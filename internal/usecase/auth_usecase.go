package usecase

import (
	"context"

	"questlink/internal/domain/entity"
)

// LoginInput carries the credential form fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginOutput is returned after a successful login of either kind.
type LoginOutput struct {
	Profile entity.UserProfile
}

// LoginCallbackSource hands over a stored login deep-link URL, consuming it.
// The deep-link router implements this.
type LoginCallbackSource interface {
	TakeLoginCallback() (string, bool)
}

// AuthUsecase owns the device session: logging in, consuming OAuth login
// callbacks, and logging out. It is the only writer of the credential store.
type AuthUsecase interface {
	// Login authenticates with email/password and stores the credential and
	// profile atomically.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// ConsumeLoginCallback completes a social login: takes the stored
	// callback URL, exchanges its authorization code with the backend and
	// stores the resulting credential.
	ConsumeLoginCallback(ctx context.Context) (*LoginOutput, error)

	// Logout clears the stored credential; the backend call is best-effort.
	Logout(ctx context.Context) error

	// CurrentUser returns the cached profile; ok is false when logged out.
	CurrentUser() (entity.UserProfile, bool)
}
