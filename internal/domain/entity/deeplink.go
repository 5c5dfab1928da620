package entity

import "time"

// InboundDeepLink is a transient event: a URL routed into the running app.
// It is classified and discarded immediately after dispatch, never persisted.
type InboundDeepLink struct {
	RawURL     string
	ReceivedAt time.Time
}
