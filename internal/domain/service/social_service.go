package service

import (
	"context"

	"questlink/internal/domain/entity"
)

// ConnectOutcomeKind tags the result shape of a StartConnect call.
type ConnectOutcomeKind string

const (
	// OutcomeConnected means the provider completed an in-process login and
	// the linkage is established; the caller should re-fetch status.
	OutcomeConnected ConnectOutcomeKind = "connected"
	// OutcomeAwaitingCallback means an authorize URL must be opened externally
	// and the flow resolves later through the deep-link router.
	OutcomeAwaitingCallback ConnectOutcomeKind = "awaiting_callback"
	// OutcomeFailed means the flow could not be started.
	OutcomeFailed ConnectOutcomeKind = "failed"
)

// ConnectOutcome unifies callback-driven (browser redirect) and synchronous
// (in-process SDK login) connect flows under one result type.
type ConnectOutcome struct {
	Kind ConnectOutcomeKind

	// AccessToken is the raw provider token, set when Kind is OutcomeConnected.
	AccessToken string

	// Session and AuthorizeURL are set when Kind is OutcomeAwaitingCallback.
	Session      *entity.PendingOAuthSession
	AuthorizeURL string

	// Reason carries a user-presentable failure message when Kind is OutcomeFailed.
	Reason string
}

// SocialIntegration is the per-provider contract for account linking.
//
// Status collapses every failure except "endpoint not implemented" into a
// disconnected zero-valued connection, so a provider outage can never crash
// the account screens. A backend 404 is surfaced as
// domainerrors.ErrIntegrationUnavailable instead.
type SocialIntegration interface {
	// Provider returns which platform this client links.
	Provider() entity.Provider

	// Status fetches the current linkage from the backend.
	Status(ctx context.Context) (*entity.ProviderConnection, error)

	// StartConnect initiates the linking flow.
	StartConnect(ctx context.Context) (*ConnectOutcome, error)

	// Disconnect unlinks the account. A backend 404 counts as already disconnected.
	Disconnect(ctx context.Context) error

	// MatchCallback consumes the pending session when the inbound URL belongs
	// to it, returning true. Providers without redirect flows always return false.
	MatchCallback(rawURL string) bool

	// CancelConnect discards the pending session when the user backs out of a
	// redirect flow. A no-op for providers without one.
	CancelConnect()
}

// RelationshipChecker answers whether an external account follows/likes a
// target entity. It never fails: any provider-side error, including the
// target not existing, resolves to false.
type RelationshipChecker interface {
	CheckPageRelationship(ctx context.Context, accessToken, targetID string) bool
}
