package driving

import (
	"context"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// InstallService manages the installable-app flow.
type InstallService interface {
	// CapturePrompt holds a deferred install prompt for later replay.
	CapturePrompt(prompt domain.PromptFunc)

	// State reports the current install state for a client.
	State(userAgent string, standalone bool) domain.InstallState

	// Install replays the deferred prompt. It returns true if the app is now installed.
	// iOS clients get false and should be shown Instructions.
	Install(ctx context.Context, userAgent string) (bool, error)

	// Instructions returns manual install steps for clients without a prompt.
	Instructions() []string
}
