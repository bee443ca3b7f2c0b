package domain

import (
	"fmt"
	"time"
)

// EngineEventType is the vocabulary of events a tracking engine emits.
type EngineEventType string

// Engine event types.
const (
	EventReady             EngineEventType = "engine-ready"
	EventError             EngineEventType = "engine-error"
	EventTargetFound       EngineEventType = "target-found"
	EventTargetLost        EngineEventType = "target-lost"
	EventDescriptorsLoaded EngineEventType = "descriptors-loaded"
	// EventAvailable marks the engine runtime as present; it carries no listener.
	EventAvailable EngineEventType = "engine-available"
)

// IsValid returns true if the event type is recognised.
func (t EngineEventType) IsValid() bool {
	switch t {
	case EventReady, EventError, EventTargetFound, EventTargetLost, EventDescriptorsLoaded, EventAvailable:
		return true
	default:
		return false
	}
}

// EngineEvent is the serialised form of one engine event, as relayed
// from a browser bridge or recorded in a replay log.
type EngineEvent struct {
	Type EngineEventType `json:"type"`

	// TargetID and TargetIndex identify the target for found/lost events.
	TargetID    string `json:"targetId,omitempty"`
	TargetIndex int    `json:"targetIndex,omitempty"`

	// ErrorName is a DOMException name, for error events.
	ErrorName string `json:"errorName,omitempty"`

	// Message is free-form detail, for error events.
	Message string `json:"message,omitempty"`

	// Delay is how long a replayer waits before emitting this event.
	Delay Duration `json:"delay,omitempty"`
}

// Validate checks the event is well formed.
func (e EngineEvent) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: engine event type %q", ErrInvalidInput, e.Type)
	}
	return nil
}

// Target returns the target portion of a found/lost event.
func (e EngineEvent) Target() TargetEvent {
	return TargetEvent{TargetID: e.TargetID, TargetIndex: e.TargetIndex}
}

// Err returns the error carried by an error event.
// Events without a DOMException name are engine runtime errors.
func (e EngineEvent) Err() error {
	if e.ErrorName == "" {
		if e.Message == "" {
			return ErrEngineRuntime
		}
		return fmt.Errorf("%s: %w", e.Message, ErrEngineRuntime)
	}
	return ErrorFromName(e.ErrorName, e.Message)
}

// Duration is a time.Duration that marshals as a Go duration string.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidInput, string(b))
	}
	*d = Duration(v)
	return nil
}
