package domain

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a session failure for presentation.
type ErrorCategory string

// Session error categories.
const (
	CategoryEngineLoad        ErrorCategory = "engine_load"
	CategoryEngineRuntime     ErrorCategory = "engine_runtime"
	CategoryCameraPermission  ErrorCategory = "camera_permission_denied"
	CategoryCameraNotFound    ErrorCategory = "camera_not_found"
	CategoryCameraInUse       ErrorCategory = "camera_in_use"
	CategoryCameraConstraints ErrorCategory = "camera_constraints_unsupported"
	CategoryUnknown           ErrorCategory = "unknown"
)

// String returns the string representation.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsCamera returns true for camera acquisition failures.
func (c ErrorCategory) IsCamera() bool {
	switch c {
	case CategoryCameraPermission, CategoryCameraNotFound, CategoryCameraInUse, CategoryCameraConstraints:
		return true
	default:
		return false
	}
}

// Title returns the short heading shown for the category.
func (c ErrorCategory) Title() string {
	switch c {
	case CategoryEngineLoad:
		return "AR engine unavailable"
	case CategoryEngineRuntime:
		return "AR engine error"
	case CategoryCameraPermission:
		return "Camera access denied"
	case CategoryCameraNotFound:
		return "No camera found"
	case CategoryCameraInUse:
		return "Camera already in use"
	case CategoryCameraConstraints:
		return "Camera not supported"
	default:
		return "Something went wrong"
	}
}

// Message returns the explanation shown under the title.
func (c ErrorCategory) Message() string {
	switch c {
	case CategoryEngineLoad:
		return "The tracking engine could not be loaded. Check your connection and reload."
	case CategoryEngineRuntime:
		return "The tracking engine stopped unexpectedly."
	case CategoryCameraPermission:
		return "Camera permission is required to display augmented reality content."
	case CategoryCameraNotFound:
		return "No camera was detected on this device."
	case CategoryCameraInUse:
		return "Another application or tab is using the camera. Close it and reload."
	case CategoryCameraConstraints:
		return "The camera does not support the requested settings."
	default:
		return "An unexpected error occurred."
	}
}

// sentinelCategories maps sentinel errors to categories; order matters for wrapped chains.
var sentinelCategories = []struct {
	err      error
	category ErrorCategory
}{
	{ErrCameraPermissionDenied, CategoryCameraPermission},
	{ErrCameraNotFound, CategoryCameraNotFound},
	{ErrCameraInUse, CategoryCameraInUse},
	{ErrCameraConstraints, CategoryCameraConstraints},
	{ErrEngineLoad, CategoryEngineLoad},
	{ErrEngineRuntime, CategoryEngineRuntime},
}

// CategoryOf classifies err by the sentinel it wraps.
// Errors carrying no known sentinel are treated as engine runtime errors.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	var se *SessionError
	if errors.As(err, &se) {
		return se.Category
	}
	for _, sc := range sentinelCategories {
		if errors.Is(err, sc.err) {
			return sc.category
		}
	}
	return CategoryEngineRuntime
}

// SessionError is the user-facing failure attached to a session.
type SessionError struct {
	Category ErrorCategory `json:"category"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Guidance []string      `json:"guidance,omitempty"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements error.
func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Title, e.Err)
	}
	return e.Title
}

// Unwrap returns the underlying cause.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError classifies err and attaches platform guidance.
func NewSessionError(err error, platform Platform) *SessionError {
	category := CategoryOf(err)
	return &SessionError{
		Category: category,
		Title:    category.Title(),
		Message:  category.Message(),
		Guidance: platform.Guidance(category),
		Err:      err,
	}
}

// ErrorFromName maps a browser DOMException name to a sentinel error.
// Unknown names map to ErrEngineRuntime so the failure is still surfaced.
func ErrorFromName(name, message string) error {
	var base error
	switch name {
	case "NotAllowedError", "PermissionDeniedError", "SecurityError":
		base = ErrCameraPermissionDenied
	case "NotFoundError", "DevicesNotFoundError":
		base = ErrCameraNotFound
	case "NotReadableError", "TrackStartError", "AbortError":
		base = ErrCameraInUse
	case "OverconstrainedError", "ConstraintNotSatisfiedError":
		base = ErrCameraConstraints
	case "EngineLoadError", "ScriptLoadError":
		base = ErrEngineLoad
	default:
		base = ErrEngineRuntime
	}
	if message == "" {
		return fmt.Errorf("%s: %w", name, base)
	}
	return fmt.Errorf("%s: %s: %w", name, message, base)
}

// IsCameraFallthrough returns true if a camera failure should try the next constraint tier.
func IsCameraFallthrough(err error) bool {
	return errors.Is(err, ErrCameraConstraints) || errors.Is(err, ErrCameraNotFound)
}
