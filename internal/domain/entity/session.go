package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PendingOAuthSession tracks one in-flight redirect-style connect flow.
// At most one exists per provider; it is destroyed when a matching callback
// arrives or the user cancels.
type PendingOAuthSession struct {
	ID             uuid.UUID // Identifier carried in the state parameter of the authorize URL.
	Provider       Provider  // The provider this flow belongs to.
	CallbackPrefix string    // The URL prefix the provider will redirect back to.
	StartedAt      time.Time // When the flow was initiated.
}

// Matches reports whether an inbound URL belongs to this session.
func (s *PendingOAuthSession) Matches(rawURL string) bool {
	if s == nil || s.CallbackPrefix == "" {
		return false
	}

	return strings.HasPrefix(rawURL, s.CallbackPrefix)
}
