package port

import "context"

// EventListenerPort - a component listening to external events (queue messages)
// and driving the matching business logic.
type EventListenerPort interface {
	// Start blocks until ctx is cancelled or the listener fails
	Start(ctx context.Context) error

	// Close stops the listener and waits for in-flight handlers
	Close() error
}
