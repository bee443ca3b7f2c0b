package tui

import "errors"

// ErrMissingRecognitionService is returned when the recognition service is not provided.
var ErrMissingRecognitionService = errors.New("tui: recognition service is required")

// ErrMissingSessionManager is returned when the session manager is not provided.
var ErrMissingSessionManager = errors.New("tui: session manager is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
