// Package tui provides an interactive terminal user interface for arvision.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recognition lists reference images and scores candidates.
	Recognition driving.RecognitionService

	// Sessions creates and tears down AR sessions.
	Sessions driving.SessionManager

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	recognition driving.RecognitionService,
	sessions driving.SessionManager,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Recognition: recognition,
		Sessions:    sessions,
		Settings:    settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Recognition == nil {
		return ErrMissingRecognitionService
	}
	if p.Sessions == nil {
		return ErrMissingSessionManager
	}
	return nil
}
