// Package cli provides the arvision command line, built on cobra.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "arvision",
	Short: "Augmented reality demo: descriptor recognition and AR sessions",
	Long: `arvision recognises reference images from their descriptor files and runs
AR tracking sessions driven by an image, face or marker engine.

Sessions receive engine events from a browser bridge over HTTP (arvision serve),
from a recorded event log (arvision session replay) or from stdin.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services wires the command line to the core.
type Services struct {
	Recognition driving.RecognitionService
	Settings    driving.SettingsService
	Sessions    driving.SessionManager
	Install     driving.InstallService

	// Source is the active descriptor source, served over HTTP by serve.
	Source driven.DescriptorSource

	// Store receives imported descriptors. Optional.
	Store driven.DescriptorStore

	// Camera captures candidate frames. Optional.
	Camera driven.Camera

	// Events routes engine events to running sessions.
	Events driven.EngineEventRouter
}

var (
	recognitionService driving.RecognitionService
	settingsService    driving.SettingsService
	sessionManager     driving.SessionManager
	installService     driving.InstallService
	descriptorSource   driven.DescriptorSource
	descriptorStore    driven.DescriptorStore
	camera             driven.Camera
	eventRouter        driven.EngineEventRouter
)

// SetServices installs the services used by every command.
func SetServices(s Services) {
	recognitionService = s.Recognition
	settingsService = s.Settings
	sessionManager = s.Sessions
	installService = s.Install
	descriptorSource = s.Source
	descriptorStore = s.Store
	camera = s.Camera
	eventRouter = s.Events
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
