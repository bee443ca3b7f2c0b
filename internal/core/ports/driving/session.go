package driving

import (
	"context"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// SessionController drives one AR tracking session.
type SessionController interface {
	// ID returns the session identifier.
	ID() string

	// Variant returns the session configuration.
	Variant() domain.Variant

	// Start waits for the engine, acquires the camera and starts tracking.
	// Failures are recorded in the session state and also returned.
	Start(ctx context.Context) error

	// State returns the current snapshot.
	State() domain.SessionState

	// Subscribe registers an observer receiving every snapshot in transition order.
	Subscribe(fn func(domain.SessionState)) (unsubscribe func())

	// Close tears the session down. It is idempotent.
	Close() error
}

// SessionOptions configures a new session.
type SessionOptions struct {
	// Variant is the built-in variant name.
	Variant string

	// Targets replaces the tracked images for selectable variants.
	// Several marker targets are tracked by independent engines.
	Targets []string

	// UserAgent selects platform-specific error guidance.
	UserAgent string
}

// SessionManager creates and tracks running sessions.
type SessionManager interface {
	// Create builds a session without starting it.
	Create(opts SessionOptions) (SessionController, error)

	// Get returns a session by id.
	Get(id string) (SessionController, error)

	// List returns the ids of open sessions.
	List() []string

	// Close tears down and forgets a session.
	Close(id string) error

	// CloseAll tears down every session.
	CloseAll() error
}
