package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Catalog lookups of unknown reference images return it.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown descriptor format, engine or variant.
	ErrUnsupportedType = errors.New("unsupported type")

	// Descriptor Errors.

	// ErrFetchFailed indicates the backing store could not deliver a descriptor
	// (non-success status or transport failure).
	ErrFetchFailed = errors.New("descriptor fetch failed")

	// ErrDescriptorMissing indicates the store holds nothing at a locator.
	// Sources wrap it together with ErrFetchFailed; it never implies ErrNotFound.
	ErrDescriptorMissing = errors.New("descriptor missing")

	// Engine Errors.

	// ErrEngineLoad indicates the external tracking engine could not be loaded.
	ErrEngineLoad = errors.New("tracking engine failed to load")

	// ErrEngineTimeout indicates the engine did not become available before the deadline.
	ErrEngineTimeout = errors.New("tracking engine not available before deadline")

	// ErrEngineRuntime indicates the tracking engine raised an error event.
	ErrEngineRuntime = errors.New("tracking engine runtime error")

	// Camera Errors.

	// ErrCameraPermissionDenied indicates the user refused camera access.
	ErrCameraPermissionDenied = errors.New("camera permission denied")

	// ErrCameraNotFound indicates no camera device is present.
	ErrCameraNotFound = errors.New("camera not found")

	// ErrCameraInUse indicates the camera is already claimed by another consumer.
	ErrCameraInUse = errors.New("camera already in use")

	// ErrCameraConstraints indicates the requested camera constraints cannot be satisfied.
	ErrCameraConstraints = errors.New("camera constraints unsupported")

	// Session Errors.

	// ErrSessionClosed indicates an operation on a torn-down session.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionStarted indicates Start was called twice on one session.
	ErrSessionStarted = errors.New("session already started")
)
