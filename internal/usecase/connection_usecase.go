// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"questlink/internal/domain/entity"
)

// ConnectionSnapshot is what a view renders for one provider. Copies only:
// the presenter's internal state never escapes.
type ConnectionSnapshot struct {
	Provider   entity.Provider
	State      entity.ConnectionState
	Connection entity.ProviderConnection

	// AuthorizeURL and QRCode are populated while a redirect flow awaits its
	// callback, so the view can open the URL or show the code.
	AuthorizeURL string
	QRCode       []byte

	// AlertMessage is a short localized message after a failed explicit
	// action (connect/disconnect). Status-refresh failures stay silent.
	AlertMessage string
}

// ConnectionUsecase drives the per-provider linkage state machine:
// Unknown -> Disconnected | Connected | Connecting | Unavailable, with no
// terminal states.
type ConnectionUsecase interface {
	// Refresh re-fetches the provider's status and settles the state.
	Refresh(ctx context.Context, provider entity.Provider)

	// ToggleOn starts a connect flow from Disconnected.
	ToggleOn(ctx context.Context, provider entity.Provider) error

	// ToggleOff disconnects (after backend confirmation) or cancels a
	// pending redirect flow.
	ToggleOff(ctx context.Context, provider entity.Provider) error

	// HandleCallback is invoked by the deep-link router when a linking
	// callback matched the provider's pending session.
	HandleCallback(ctx context.Context, provider entity.Provider)

	// Snapshot returns the current render state for one provider.
	Snapshot(provider entity.Provider) ConnectionSnapshot

	// Listen registers a change listener and returns its unsubscribe func.
	Listen(fn func(ConnectionSnapshot)) (unsubscribe func())

	// Detach discards any in-flight result for the provider, for when the
	// screen showing it unmounts mid-request.
	Detach(provider entity.Provider)
}
