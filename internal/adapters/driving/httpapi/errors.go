// Package httpapi exposes recognition, sessions and the install flow over HTTP.
// A browser bridge drives relay engines by posting engine events to a session.
package httpapi

import "errors"

// ErrMissingRecognitionService is returned when the recognition service is not provided.
var ErrMissingRecognitionService = errors.New("httpapi: recognition service is required")
