package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

var (
	cameraDevice int
	cameraWidth  int
	cameraHeight int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure recognition, descriptor source, session timing and camera settings.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the threshold and descriptor source step by step.`,
	RunE:  runSettingsWizard,
}

var settingsSourceCmd = &cobra.Command{
	Use:   "source [kind] [location]",
	Short: "Set the descriptor source",
	Long: `Set where descriptor files are fetched from.

Available sources:
  http    - Static file server; location is the base URL
  dir     - Local directory; location is the root directory
  sqlite  - SQLite database; location is the data directory (optional)`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSource,
}

var settingsCameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Configure the local camera",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCamera,
}

func init() {
	settingsCameraCmd.Flags().IntVar(&cameraDevice, "device", -1, "capture device index (-1 = default)")
	settingsCameraCmd.Flags().IntVar(&cameraWidth, "width", domain.DefaultCameraWidth, "ideal frame width")
	settingsCameraCmd.Flags().IntVar(&cameraHeight, "height", domain.DefaultCameraHeight, "ideal frame height")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsSourceCmd)
	settingsCmd.AddCommand(settingsCameraCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Recognition]")
	cmd.Printf("  Threshold: %.2f\n", settings.Recognition.Threshold)
	cmd.Println()

	cmd.Println("[Descriptors]")
	cmd.Printf("  Source: %s\n", settings.Descriptors.Source.Description())
	switch settings.Descriptors.Source {
	case domain.SourceHTTP:
		cmd.Printf("  Base URL: %s\n", settings.Descriptors.BaseURL)
		if settings.Descriptors.RateLimit > 0 {
			cmd.Printf("  Rate limit: %g req/s\n", settings.Descriptors.RateLimit)
		} else {
			cmd.Println("  Rate limit: none")
		}
	case domain.SourceDir, domain.SourceSQLite:
		dir := settings.Descriptors.Dir
		if dir == "" {
			dir = "(default)"
		}
		cmd.Printf("  Directory: %s\n", dir)
	}
	cmd.Println()

	cmd.Println("[Session]")
	cmd.Printf("  Poll interval: %s\n", settings.Session.PollInterval)
	cmd.Printf("  Engine timeout: %s\n", settings.Session.EngineTimeout)
	cmd.Printf("  Loading timeout: %s\n", settings.Session.LoadingTimeout)
	cmd.Println()

	cmd.Println("[Camera]")
	if settings.Camera.Device < 0 {
		cmd.Println("  Device: default")
	} else {
		cmd.Printf("  Device: %d\n", settings.Camera.Device)
	}
	cmd.Printf("  Resolution: %dx%d\n", settings.Camera.Width, settings.Camera.Height)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'arvision settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("arvision Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Threshold
	cmd.Println("Step 1: Similarity Threshold")
	cmd.Println("----------------------------")
	cmd.Printf("Enter threshold in [0,1] [%.2f]: ", settings.Recognition.Threshold)
	if input := readLine(reader); input != "" {
		v, err := strconv.ParseFloat(input, 64)
		if err != nil || !domain.ValidThreshold(v) {
			return fmt.Errorf("%w: threshold %q", domain.ErrInvalidInput, input)
		}
		if err := settingsService.SetThreshold(v); err != nil {
			return fmt.Errorf("failed to set threshold: %w", err)
		}
		if recognitionService != nil {
			_ = recognitionService.SetDefaultThreshold(v)
		}
	}
	cmd.Println()

	// Step 2: Descriptor source
	cmd.Println("Step 2: Descriptor Source")
	cmd.Println("-------------------------")
	kinds := domain.AllDescriptorSources()
	current := 1
	for i, kind := range kinds {
		if kind == settings.Descriptors.Source {
			current = i + 1
		}
		cmd.Printf("  %d. %s\n", i+1, kind.Description())
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	kind := kinds[parseChoice(readLine(reader), len(kinds), current)-1]

	location := settings.Descriptors.BaseURL
	prompt := "Base URL"
	if kind != domain.SourceHTTP {
		location = settings.Descriptors.Dir
		prompt = "Directory"
	}
	cmd.Printf("%s [%s]: ", prompt, location)
	if input := readLine(reader); input != "" {
		location = input
	}
	if err := settingsService.SetDescriptorSource(kind, location); err != nil {
		return fmt.Errorf("failed to set descriptor source: %w", err)
	}
	cmd.Printf("Set descriptor source to: %s\n\n", kind.Description())

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("Restart running commands for the new source to take effect.")
	return nil
}

func runSettingsSource(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	kind := domain.DescriptorSourceKind(strings.ToLower(args[0]))
	if !kind.IsValid() {
		return fmt.Errorf("%w: descriptor source %q", domain.ErrUnsupportedType, args[0])
	}
	location := ""
	if len(args) > 1 {
		location = args[1]
	}
	if kind == domain.SourceHTTP && location == "" {
		location = domain.DefaultDescriptorBaseURL
	}
	if kind == domain.SourceDir && location == "" {
		return fmt.Errorf("%w: the dir source needs a directory", domain.ErrInvalidInput)
	}
	if err := settingsService.SetDescriptorSource(kind, location); err != nil {
		return fmt.Errorf("failed to set descriptor source: %w", err)
	}
	cmd.Printf("Descriptor source set to %s\n", kind.Description())
	return nil
}

func runSettingsCamera(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if cameraWidth <= 0 || cameraHeight <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", domain.ErrInvalidInput, cameraWidth, cameraHeight)
	}
	if err := settingsService.SetCamera(cameraDevice, cameraWidth, cameraHeight); err != nil {
		return fmt.Errorf("failed to set camera: %w", err)
	}
	cmd.Printf("Camera set to device %d at %dx%d\n", cameraDevice, cameraWidth, cameraHeight)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}
