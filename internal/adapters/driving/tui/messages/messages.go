// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the route menu.
	ViewMenu ViewType = iota
	// ViewRecognize lists reference images and scores candidates.
	ViewRecognize
	// ViewSession shows a running AR session.
	ViewSession
	// ViewSettings shows the application settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewRecognize:
		return "recognize"
	case ViewSession:
		return "session"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// RouteSelected is sent when a menu route is chosen.
type RouteSelected struct {
	Route domain.Route
}

// SessionCreated carries a session built for a route, not yet started.
type SessionCreated struct {
	Session driving.SessionController
	Err     error
}

// SessionStateChanged carries one snapshot of the running session.
type SessionStateChanged struct {
	SessionID string
	State     domain.SessionState
}

// SessionStartReturned is sent when Start returns.
type SessionStartReturned struct {
	SessionID string
	Err       error
}

// SessionClosed is sent once a session has been torn down.
type SessionClosed struct {
	SessionID string
	Err       error
}

// ImagesLoaded carries the reference image catalog.
type ImagesLoaded struct {
	Images []domain.ImageSummary
}

// RecognitionCompleted carries the outcome of one comparison.
type RecognitionCompleted struct {
	Result domain.RecognitionResult
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
