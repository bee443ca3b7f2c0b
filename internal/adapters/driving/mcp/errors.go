// Package mcp provides an MCP (Model Context Protocol) server adapter for arvision.
// It lets AI assistants browse the reference catalog, load descriptors and score candidates.
package mcp

import "errors"

// ErrMissingRecognitionService is returned when the recognition service is not provided.
var ErrMissingRecognitionService = errors.New("mcp: recognition service is required")
