// Package delivery defines the contract every inbound transport satisfies.
package delivery

import "context"

// Delivery is a server that accepts events from the outside world.
type Delivery interface {
	Serve(ctx context.Context) error
}
