package domain

import "context"

// InstallOutcome is the user's answer to an install prompt.
type InstallOutcome string

// Install outcomes.
const (
	InstallAccepted  InstallOutcome = "accepted"
	InstallDismissed InstallOutcome = "dismissed"
)

// PromptFunc replays a deferred install prompt and waits for the user's choice.
type PromptFunc func(ctx context.Context) (InstallOutcome, error)

// InstallState describes whether the app can be, or already is, installed.
type InstallState struct {
	// Installed is true once the user accepted, or the app runs standalone.
	Installed bool `json:"installed"`

	// Installable is true when a deferred prompt is held.
	Installable bool `json:"installable"`

	// IOS is true when the client needs manual instructions instead of a prompt.
	IOS bool `json:"ios"`

	// Standalone is true when the client already runs as an installed app.
	Standalone bool `json:"standalone"`
}

// CanPrompt returns true if an install action would do anything.
func (s InstallState) CanPrompt() bool {
	return !s.Installed && (s.Installable || s.IOS)
}

// IOSInstallInstructions returns the manual steps for adding to the home screen.
func IOSInstallInstructions() []string {
	return []string{
		"Tap the Share button in Safari's toolbar.",
		"Scroll down and choose \"Add to Home Screen\".",
		"Tap \"Add\" to confirm.",
	}
}
