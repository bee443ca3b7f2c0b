// Package relay implements a tracking engine whose events are pushed in by
// the caller: a browser bridge posting over HTTP, a stdin reader, or a test.
package relay

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.TrackingEngineProvider = (*Engine)(nil)

// Engine relays externally produced engine events to listeners.
// Events are delivered in the order Emit is called, one at a time.
type Engine struct {
	emitMu sync.Mutex

	mu        sync.Mutex
	nextID    int
	available bool
	running   bool
	variant   domain.Variant
	startErr  error
	stopErr   error
	starts    int
	stops     int

	ready  listeners[struct{}]
	errs   listeners[error]
	found  listeners[domain.TargetEvent]
	lost   listeners[domain.TargetEvent]
	loaded listeners[struct{}]
}

// New creates an engine that is not yet available.
func New() *Engine {
	return &Engine{}
}

// NewAvailable creates an engine that reports itself available immediately.
func NewAvailable() *Engine {
	return &Engine{available: true}
}

// IsAvailable reports whether the engine runtime has been announced.
func (e *Engine) IsAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available
}

// SetAvailable announces or withdraws the engine runtime.
func (e *Engine) SetAvailable(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.available = v
}

// FailStart makes the next Start calls return err.
func (e *Engine) FailStart(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startErr = err
}

// FailStop makes the next Stop calls return err.
func (e *Engine) FailStop(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopErr = err
}

func (e *Engine) register(add func(id int), remove func(id int)) driven.Unsubscribe {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	add(id)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			remove(id)
			e.mu.Unlock()
		})
	}
}

// OnReady registers a listener for the engine-ready event.
func (e *Engine) OnReady(fn func()) driven.Unsubscribe {
	return e.register(
		func(id int) { e.ready.add(id, func(struct{}) { fn() }) },
		e.ready.remove,
	)
}

// OnError registers a listener for engine-error events.
func (e *Engine) OnError(fn func(error)) driven.Unsubscribe {
	return e.register(func(id int) { e.errs.add(id, fn) }, e.errs.remove)
}

// OnTargetFound registers a listener for target-found events.
func (e *Engine) OnTargetFound(fn func(domain.TargetEvent)) driven.Unsubscribe {
	return e.register(func(id int) { e.found.add(id, fn) }, e.found.remove)
}

// OnTargetLost registers a listener for target-lost events.
func (e *Engine) OnTargetLost(fn func(domain.TargetEvent)) driven.Unsubscribe {
	return e.register(func(id int) { e.lost.add(id, fn) }, e.lost.remove)
}

// OnDescriptorsLoaded registers a listener for the descriptors-loaded event.
func (e *Engine) OnDescriptorsLoaded(fn func()) driven.Unsubscribe {
	return e.register(
		func(id int) { e.loaded.add(id, func(struct{}) { fn() }) },
		e.loaded.remove,
	)
}

// ListenerCount returns the number of attached listeners of all kinds.
func (e *Engine) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready.len() + e.errs.len() + e.found.len() + e.lost.len() + e.loaded.len()
}

// Start marks the engine running.
func (e *Engine) Start(variant domain.Variant) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.startErr != nil {
		return e.startErr
	}
	if !e.available {
		return fmt.Errorf("%w: engine runtime not present", domain.ErrEngineLoad)
	}
	e.running = true
	e.variant = variant
	logger.Debug("relay engine started for %s", variant.Name)
	return nil
}

// Stop marks the engine stopped.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	if e.stopErr != nil {
		return e.stopErr
	}
	e.running = false
	return nil
}

// Running reports whether Start succeeded and Stop has not.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Variant returns the configuration passed to the last successful Start.
func (e *Engine) Variant() domain.Variant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.variant
}

// Calls returns how many times Start and Stop were invoked.
func (e *Engine) Calls() (starts, stops int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts, e.stops
}

// Emit delivers a serialised engine event.
func (e *Engine) Emit(ev domain.EngineEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	switch ev.Type {
	case domain.EventAvailable:
		e.SetAvailable(true)
	case domain.EventReady:
		e.EmitReady()
	case domain.EventError:
		e.EmitError(ev.Err())
	case domain.EventTargetFound:
		e.EmitTargetFound(ev.Target())
	case domain.EventTargetLost:
		e.EmitTargetLost(ev.Target())
	case domain.EventDescriptorsLoaded:
		e.EmitDescriptorsLoaded()
	}
	return nil
}

// EmitReady delivers the engine-ready event.
func (e *Engine) EmitReady() {
	deliver(e, &e.ready, struct{}{})
}

// EmitError delivers an engine-error event.
func (e *Engine) EmitError(err error) {
	deliver(e, &e.errs, err)
}

// EmitTargetFound delivers a target-found event.
func (e *Engine) EmitTargetFound(ev domain.TargetEvent) {
	deliver(e, &e.found, ev)
}

// EmitTargetLost delivers a target-lost event.
func (e *Engine) EmitTargetLost(ev domain.TargetEvent) {
	deliver(e, &e.lost, ev)
}

// EmitDescriptorsLoaded delivers the descriptors-loaded event.
func (e *Engine) EmitDescriptorsLoaded() {
	deliver(e, &e.loaded, struct{}{})
}

// deliver calls listeners without holding e.mu so they may unsubscribe or stop the engine.
func deliver[T any](e *Engine, l *listeners[T], v T) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	e.mu.Lock()
	fns := l.snapshot()
	e.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
