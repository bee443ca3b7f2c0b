package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/adapters/driving/tui"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// TUIConfig holds configuration for the TUI command.
type TUIConfig struct {
	RecognitionService driving.RecognitionService
	SessionManager     driving.SessionManager
	SettingsService    driving.SettingsService
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for arvision.

The TUI lists the demo routes, opens AR sessions, scores candidates against
reference descriptors and edits settings.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open / Select
  Tab      - Next descriptor format
  r        - Retry a failed session
  Esc      - Back / Close session
  q        - Quit`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// Build ports from configuration, falling back to the shared services
	ports := tui.NewPorts(recognitionService, sessionManager, settingsService)
	if tuiConfig != nil {
		ports = tui.NewPorts(tuiConfig.RecognitionService, tuiConfig.SessionManager, tuiConfig.SettingsService)
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Sessions opened from the menu end with the UI.
	if sessionManager != nil {
		if err := sessionManager.CloseAll(); err != nil {
			fmt.Fprintf(os.Stderr, "closing sessions: %v\n", err)
		}
	}
	return nil
}
