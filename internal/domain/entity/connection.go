package entity

import "time"

// Provider identifies an external social platform offering account linking.
type Provider string

const (
	ProviderFacebook Provider = "facebook"
	ProviderTikTok   Provider = "tiktok"
)

// ConnectionState is the UI-visible state of one provider's linkage.
type ConnectionState string

const (
	// ConnectionUnknown is the initial state before the first status fetch resolves.
	ConnectionUnknown ConnectionState = "unknown"
	// ConnectionDisconnected means no account is linked (also the fail-safe state).
	ConnectionDisconnected ConnectionState = "disconnected"
	// ConnectionConnecting means a connect flow is in flight or awaiting its callback.
	ConnectionConnecting ConnectionState = "connecting"
	// ConnectionConnected means the backend confirmed an active linkage.
	ConnectionConnected ConnectionState = "connected"
	// ConnectionUnavailable means the backend does not implement this integration (404).
	ConnectionUnavailable ConnectionState = "unavailable"
)

// ProviderConnection describes one provider's linkage as reported by the backend.
// When Connected is false every optional field stays zero.
type ProviderConnection struct {
	Provider         Provider
	Connected        bool
	ExternalUsername string
	ProfileURL       string
	FollowerCount    int
	LastSyncedAt     *time.Time
}

// Disconnected returns the fail-safe zero connection for a provider.
func Disconnected(provider Provider) *ProviderConnection {
	return &ProviderConnection{Provider: provider}
}
