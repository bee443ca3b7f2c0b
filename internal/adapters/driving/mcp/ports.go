package mcp

import (
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recognition lists images, loads descriptors and scores candidates.
	Recognition driving.RecognitionService

	// Sessions exposes running AR sessions. Optional.
	Sessions driving.SessionManager
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Recognition == nil {
		return ErrMissingRecognitionService
	}
	return nil
}
