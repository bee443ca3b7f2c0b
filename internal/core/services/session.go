package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Ensure SessionController implements the interface.
var _ driving.SessionController = (*SessionController)(nil)

// SessionConfig holds the collaborators of one session.
type SessionConfig struct {
	// ID identifies the session; it is also the camera guard owner.
	ID string

	// Variant selects the engine and targets.
	Variant domain.Variant

	// Engine is the tracking engine driven by the session. Required.
	Engine driven.TrackingEngineProvider

	// Camera is acquired through Guard before the engine starts.
	// Nil means the engine manages its own capture.
	Camera driven.Camera

	// Guard enforces one stream at a time. Required when Camera is set.
	Guard *CameraGuard

	// Constraints is the ideal camera request.
	Constraints domain.CameraConstraints

	// Timing holds polling and timeout parameters; zero values use defaults.
	Timing domain.SessionTiming

	// Platform selects error guidance.
	Platform domain.Platform

	// Descriptors preloads the variant's descriptors when set.
	Descriptors driving.RecognitionService
}

// SessionController is the single state machine behind every AR variant.
type SessionController struct {
	cfg        SessionConfig
	dispatcher *dispatcher

	mu           sync.Mutex
	state        domain.SessionState
	lifecycle    domain.EngineLifecycle
	started      bool
	closed       bool
	unsubs       []driven.Unsubscribe
	stream       driven.Stream
	releaseCam   func()
	loadingTimer *time.Timer
	cancelWait   context.CancelFunc
}

// NewSessionController creates a session in the Initializing phase.
// Close must be called to release its resources.
func NewSessionController(cfg SessionConfig) (*SessionController, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("%w: session requires a tracking engine", domain.ErrInvalidInput)
	}
	if cfg.Camera != nil && cfg.Guard == nil {
		return nil, fmt.Errorf("%w: camera without guard", domain.ErrInvalidInput)
	}
	if cfg.Platform == "" {
		cfg.Platform = domain.PlatformGeneric
	}
	cfg.Timing = cfg.Timing.Normalised()

	return &SessionController{
		cfg:        cfg,
		dispatcher: newDispatcher(),
		state: domain.SessionState{
			Phase:   domain.PhaseInitializing,
			Loading: true,
		},
	}, nil
}

// ID returns the session identifier.
func (c *SessionController) ID() string {
	return c.cfg.ID
}

// Variant returns the session configuration.
func (c *SessionController) Variant() domain.Variant {
	return c.cfg.Variant
}

// State returns the current snapshot.
func (c *SessionController) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lifecycle returns the engine lifecycle state.
func (c *SessionController) Lifecycle() domain.EngineLifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lifecycle
}

// Subscribe registers an observer. It first receives the current snapshot,
// then every later one in transition order.
func (c *SessionController) Subscribe(fn func(domain.SessionState)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatcher.subscribe(fn, c.state)
}

// Start waits for the engine, acquires the camera and starts tracking.
func (c *SessionController) Start(ctx context.Context) error {
	waitCtx, err := c.begin(ctx)
	if err != nil {
		return err
	}

	available := true
	err = WaitForEngine(waitCtx, c.cfg.Engine.IsAvailable, c.cfg.Timing.PollInterval, c.cfg.Timing.EngineTimeout)
	switch {
	case errors.Is(err, domain.ErrEngineTimeout):
		logger.Warn("session %s: %v; continuing without engine", c.cfg.ID, err)
		available = false
		c.forceReady("engine availability timeout")
	case err != nil:
		// A caller that stops waiting leaves nothing to force Ready later.
		return c.fail(fmt.Errorf("waiting for engine: %w", err))
	}
	if err := c.failed(); err != nil {
		return err
	}

	if available {
		c.preloadDescriptors(ctx)
	}

	if c.cfg.Camera != nil {
		stream, release, err := c.cfg.Guard.Acquire(ctx, c.cfg.Camera, c.cfg.ID, c.cfg.Constraints)
		if err != nil {
			return c.fail(err)
		}
		if !c.attachStream(stream, release) {
			return domain.ErrSessionClosed
		}
	}

	if !available {
		return nil
	}

	if err := c.cfg.Engine.Start(c.cfg.Variant); err != nil {
		return c.fail(fmt.Errorf("start %s engine: %w: %w", c.cfg.Variant.Engine, domain.ErrEngineLoad, err))
	}
	if !c.markRunning() {
		c.stopEngine()
		return domain.ErrSessionClosed
	}
	return c.failed()
}

// begin moves to WaitingForEngine, attaches listeners and arms the loading timeout.
func (c *SessionController) begin(ctx context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrSessionClosed
	}
	if c.started {
		return nil, domain.ErrSessionStarted
	}
	c.started = true

	waitCtx, cancel := context.WithCancel(ctx)
	c.cancelWait = cancel

	e := c.cfg.Engine
	c.unsubs = append(c.unsubs,
		e.OnReady(c.handleReady),
		e.OnError(c.handleError),
		e.OnTargetFound(c.handleFound),
		e.OnTargetLost(c.handleLost),
		e.OnDescriptorsLoaded(c.handleDescriptorsLoaded),
	)

	c.loadingTimer = time.AfterFunc(c.cfg.Timing.LoadingTimeout, func() {
		c.forceReady("loading safety timeout")
	})

	c.state.Phase = domain.PhaseWaitingForEngine
	c.publishLocked()
	logger.Debug("session %s: waiting for %s engine", c.cfg.ID, c.cfg.Variant.Engine)
	return waitCtx, nil
}

func (c *SessionController) preloadDescriptors(ctx context.Context) {
	if c.cfg.Descriptors == nil {
		return
	}
	for _, target := range c.cfg.Variant.Targets {
		for _, format := range c.cfg.Variant.DescriptorFormats() {
			if _, err := c.cfg.Descriptors.LoadDescriptor(ctx, target, format); err != nil {
				logger.Warn("session %s: preload %s.%s: %v", c.cfg.ID, target, format, err)
			}
		}
	}
}

func (c *SessionController) attachStream(stream driven.Stream, release func()) bool {
	c.mu.Lock()
	if !c.closed {
		c.stream = stream
		c.releaseCam = release
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()
	StopStream(stream)
	release()
	return false
}

func (c *SessionController) markRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.lifecycle = domain.EngineRunning
	return true
}

// failed returns the recorded session error, if any.
func (c *SessionController) failed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	if c.state.Error != nil {
		return c.state.Error
	}
	return nil
}

// fail moves to Error and returns the classified error.
func (c *SessionController) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	return c.failLocked(err)
}

func (c *SessionController) failLocked(err error) error {
	if c.state.Error != nil {
		return c.state.Error
	}
	if c.cancelWait != nil {
		c.cancelWait()
	}
	se := domain.NewSessionError(err, c.cfg.Platform)
	c.state.Phase = domain.PhaseError
	c.state.Loading = false
	c.state.Tracking = false
	c.state.DetectedObjectID = ""
	c.state.Error = se
	c.stopLoadingTimerLocked()
	c.publishLocked()
	logger.Warn("session %s: %s: %v", c.cfg.ID, se.Category, err)
	return se
}

// forceReady ends loading without a ready signal.
func (c *SessionController) forceReady(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Phase.IsTerminal() || !c.state.Loading {
		return
	}
	logger.Warn("session %s: %s, leaving loading state", c.cfg.ID, reason)
	c.state.Phase = domain.PhaseReady
	c.state.Loading = false
	c.stopLoadingTimerLocked()
	c.publishLocked()
}

func (c *SessionController) handleReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Phase.IsTerminal() {
		return
	}
	changed := c.state.Phase != domain.PhaseReady || c.state.Loading
	c.state.Phase = domain.PhaseReady
	c.state.Loading = false
	c.stopLoadingTimerLocked()
	if changed {
		c.publishLocked()
	}
	logger.Info("session %s: engine ready", c.cfg.ID)
}

func (c *SessionController) handleError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if err == nil {
		err = domain.ErrEngineRuntime
	}
	_ = c.failLocked(err)
}

func (c *SessionController) handleFound(ev domain.TargetEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Phase != domain.PhaseReady {
		logger.Debug("session %s: ignoring target-found in phase %s", c.cfg.ID, c.state.Phase)
		return
	}
	objectID := c.resolveObject(ev)
	if c.state.Tracking && c.state.DetectedObjectID == objectID {
		return
	}
	c.state.Tracking = true
	c.state.DetectedObjectID = objectID
	c.publishLocked()
	logger.Debug("session %s: target found (%s)", c.cfg.ID, objectID)
}

func (c *SessionController) handleLost(ev domain.TargetEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.state.Tracking {
		return
	}
	c.state.Tracking = false
	c.state.DetectedObjectID = ""
	c.publishLocked()
	logger.Debug("session %s: target lost (%s)", c.cfg.ID, ev.TargetID)
}

func (c *SessionController) handleDescriptorsLoaded() {
	logger.Info("session %s: engine loaded its descriptors", c.cfg.ID)
}

// resolveObject maps a target event to an ARObject id, or "".
func (c *SessionController) resolveObject(ev domain.TargetEvent) string {
	id := ev.TargetID
	if id == "" && ev.TargetIndex >= 0 && ev.TargetIndex < len(c.cfg.Variant.Targets) {
		id = c.cfg.Variant.Targets[ev.TargetIndex]
	}
	if id == "" {
		id = c.cfg.Variant.Overlay
	}
	if _, ok := domain.LookupARObject(id); ok {
		return id
	}
	return ""
}

func (c *SessionController) stopLoadingTimerLocked() {
	if c.loadingTimer != nil {
		c.loadingTimer.Stop()
		c.loadingTimer = nil
	}
}

func (c *SessionController) publishLocked() {
	c.dispatcher.publish(c.state)
}

// Close detaches listeners, stops camera tracks, cancels timers and stops
// the engine if it is running. Engine stop failures are logged, not returned.
func (c *SessionController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	if c.cancelWait != nil {
		c.cancelWait()
	}
	c.stopLoadingTimerLocked()

	unsubs := c.unsubs
	c.unsubs = nil
	stream, release := c.stream, c.releaseCam
	c.stream, c.releaseCam = nil, nil
	stopEngine := c.lifecycle == domain.EngineRunning
	if c.lifecycle == domain.EngineRunning {
		c.lifecycle = domain.EngineStopped
	}

	c.state.Phase = domain.PhaseTornDown
	c.state.Loading = false
	c.state.Tracking = false
	c.state.DetectedObjectID = ""
	c.dispatcher.publish(c.state)
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	StopStream(stream)
	if release != nil {
		release()
	}
	if stopEngine {
		if err := c.cfg.Engine.Stop(); err != nil {
			logger.Error("session %s: stop engine: %v", c.cfg.ID, err)
		}
	}

	c.dispatcher.close()
	logger.Debug("session %s: torn down", c.cfg.ID)
	return nil
}

// stopEngine stops an engine that started after Close already ran.
func (c *SessionController) stopEngine() {
	if err := c.cfg.Engine.Stop(); err != nil {
		logger.Error("session %s: stop engine: %v", c.cfg.ID, err)
	}
	c.mu.Lock()
	c.lifecycle = domain.EngineStopped
	c.mu.Unlock()
}

// Done blocks until every snapshot published before Close has been delivered.
func (c *SessionController) Done() {
	c.dispatcher.wait()
}
