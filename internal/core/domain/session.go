package domain

import "time"

// Phase is the coarse state of an AR session.
type Phase int

// Session phases.
const (
	PhaseInitializing Phase = iota
	PhaseWaitingForEngine
	PhaseReady
	PhaseError
	PhaseTornDown
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseWaitingForEngine:
		return "waiting_for_engine"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	case PhaseTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for phases with no outgoing transitions except teardown.
func (p Phase) IsTerminal() bool {
	return p == PhaseError || p == PhaseTornDown
}

// EngineLifecycle tracks whether the tracking engine may be stopped.
type EngineLifecycle int

// Engine lifecycle states.
const (
	EngineUninitialized EngineLifecycle = iota
	EngineRunning
	EngineStopped
)

// String returns the lifecycle name.
func (l EngineLifecycle) String() string {
	switch l {
	case EngineUninitialized:
		return "uninitialized"
	case EngineRunning:
		return "running"
	case EngineStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SessionState is a snapshot of one tracking session.
type SessionState struct {
	// Phase is the coarse session state.
	Phase Phase `json:"-"`

	// Loading is true until the engine signals readiness or the safety timeout fires.
	Loading bool `json:"loading"`

	// Tracking is true while a target is found and not yet lost.
	Tracking bool `json:"tracking"`

	// DetectedObjectID is set when the found target maps to a known ARObject.
	DetectedObjectID string `json:"detectedObjectId,omitempty"`

	// Error is set once the session has failed.
	Error *SessionError `json:"error,omitempty"`
}

// PhaseName returns the phase as a string, for serialisation.
func (s SessionState) PhaseName() string {
	return s.Phase.String()
}

// SessionTiming holds the readiness polling and timeout parameters.
type SessionTiming struct {
	// PollInterval is how often engine availability is checked.
	PollInterval time.Duration

	// EngineTimeout is the hard ceiling on waiting for availability.
	EngineTimeout time.Duration

	// LoadingTimeout forces Loading to false if the ready signal never arrives.
	LoadingTimeout time.Duration
}

// DefaultSessionTiming returns the standard timing parameters.
func DefaultSessionTiming() SessionTiming {
	return SessionTiming{
		PollInterval:   100 * time.Millisecond,
		EngineTimeout:  10 * time.Second,
		LoadingTimeout: 5 * time.Second,
	}
}

// Normalised replaces non-positive durations with defaults.
func (t SessionTiming) Normalised() SessionTiming {
	d := DefaultSessionTiming()
	if t.PollInterval <= 0 {
		t.PollInterval = d.PollInterval
	}
	if t.EngineTimeout <= 0 {
		t.EngineTimeout = d.EngineTimeout
	}
	if t.LoadingTimeout <= 0 {
		t.LoadingTimeout = d.LoadingTimeout
	}
	return t
}

// TargetEvent is delivered when an engine finds or loses a target.
type TargetEvent struct {
	// TargetID is the engine-reported identity, usually a catalog or object id.
	TargetID string `json:"targetId,omitempty"`

	// TargetIndex is the engine's positional index for the target.
	TargetIndex int `json:"targetIndex"`
}
