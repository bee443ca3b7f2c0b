package driven

import "github.com/custodia-labs/arvision/internal/core/domain"

// Unsubscribe detaches a previously attached listener. Calling it more than once is safe.
type Unsubscribe func()

// TrackingEngineProvider is an externally loaded tracking engine.
// Listeners may be invoked from any goroutine, but a single provider delivers
// its own events in the order they occur.
type TrackingEngineProvider interface {
	// IsAvailable reports whether the engine runtime is present and can be started.
	IsAvailable() bool

	// OnReady registers a listener for the engine-ready event.
	OnReady(fn func()) Unsubscribe

	// OnError registers a listener for engine-error events.
	OnError(fn func(err error)) Unsubscribe

	// OnTargetFound registers a listener for target-found events.
	OnTargetFound(fn func(domain.TargetEvent)) Unsubscribe

	// OnTargetLost registers a listener for target-lost events.
	OnTargetLost(fn func(domain.TargetEvent)) Unsubscribe

	// OnDescriptorsLoaded registers a listener for the descriptors-loaded event.
	OnDescriptorsLoaded(fn func()) Unsubscribe

	// Start begins tracking with the variant's configuration.
	Start(variant domain.Variant) error

	// Stop halts tracking. It is only called on a started engine.
	Stop() error
}

// EngineFactory builds a provider for a variant's engine kind.
// id identifies the session (or multi-target member) the engine serves.
type EngineFactory interface {
	Create(id string, variant domain.Variant) (TrackingEngineProvider, error)
}

// EngineEventRouter delivers externally produced engine events to the
// engine(s) serving a session.
type EngineEventRouter interface {
	Route(sessionID string, ev domain.EngineEvent) error
}

// EngineReleaser is implemented by factories that keep created engines
// around and must forget them when a session closes.
type EngineReleaser interface {
	Remove(sessionID string)
}
