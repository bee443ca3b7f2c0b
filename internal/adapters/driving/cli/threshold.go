package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Show or change the default similarity threshold",
	RunE:  runThresholdGet,
}

var thresholdGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the default similarity threshold",
	Args:  cobra.NoArgs,
	RunE:  runThresholdGet,
}

var thresholdSetCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Set the default similarity threshold",
	Long:  `Sets the default threshold, a value in [0,1], and persists it to the configuration file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runThresholdSet,
}

func init() {
	thresholdCmd.AddCommand(thresholdGetCmd)
	thresholdCmd.AddCommand(thresholdSetCmd)
	rootCmd.AddCommand(thresholdCmd)
}

func runThresholdGet(cmd *cobra.Command, _ []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	cmd.Printf("%.2f\n", recognitionService.DefaultThreshold())
	return nil
}

func runThresholdSet(cmd *cobra.Command, args []string) error {
	if recognitionService == nil {
		return errors.New("recognition service not configured")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%w: threshold %q is not a number", domain.ErrInvalidInput, args[0])
	}
	if err := recognitionService.SetDefaultThreshold(v); err != nil {
		return err
	}
	if settingsService != nil {
		if err := settingsService.SetThreshold(v); err != nil {
			return fmt.Errorf("failed to save threshold: %w", err)
		}
	}
	cmd.Printf("Threshold set to %.2f\n", v)
	return nil
}
