package httpapi

import (
	"net/http"

	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// Ports aggregates the services the HTTP API needs.
type Ports struct {
	// Recognition lists images and scores candidates. Required.
	Recognition driving.RecognitionService

	// Sessions creates and tears down AR sessions. Optional.
	Sessions driving.SessionManager

	// Events routes engine events posted by a browser bridge. Optional.
	Events driven.EngineEventRouter

	// Install drives the installable-app flow. Optional.
	Install driving.InstallService

	// Descriptors serves raw descriptor files under the descriptor base path. Optional.
	Descriptors driven.DescriptorSource

	// MCP is mounted at /mcp when set. Optional.
	MCP http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Recognition == nil {
		return ErrMissingRecognitionService
	}
	return nil
}
