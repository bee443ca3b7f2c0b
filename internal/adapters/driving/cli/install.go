package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

var (
	installYes    bool
	installStatus bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install arvision as an app",
	Long: `Asks whether to install arvision as an app and records the answer.
Once installed, the question is never asked again.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "accept without asking")
	installCmd.Flags().BoolVar(&installStatus, "status", false, "only show the install state")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	if installService == nil {
		return errors.New("install service not configured")
	}

	state := installService.State("", false)
	if state.Installed {
		cmd.Println("arvision is already installed.")
		return nil
	}
	if installStatus {
		cmd.Println("arvision is not installed.")
		return nil
	}

	installService.CapturePrompt(terminalPrompt(cmd))
	installed, err := installService.Install(cmd.Context(), "")
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	if installed {
		cmd.Println("Installed.")
	} else {
		cmd.Println("Install dismissed.")
	}
	return nil
}

// terminalPrompt asks on the command's input, or accepts directly with --yes.
func terminalPrompt(cmd *cobra.Command) domain.PromptFunc {
	return func(_ context.Context) (domain.InstallOutcome, error) {
		if installYes {
			return domain.InstallAccepted, nil
		}
		cmd.Print("Install arvision as an app? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer == "y" || answer == "yes" {
			return domain.InstallAccepted, nil
		}
		return domain.InstallDismissed, nil
	}
}
