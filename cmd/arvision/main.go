// Command arvision runs the AR recognition demo from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/arvision/cgo/camera"
	"github.com/custodia-labs/arvision/internal/adapters/driven/config/file"
	"github.com/custodia-labs/arvision/internal/adapters/driven/descriptors/local"
	"github.com/custodia-labs/arvision/internal/adapters/driven/descriptors/remote"
	"github.com/custodia-labs/arvision/internal/adapters/driven/engine/relay"
	"github.com/custodia-labs/arvision/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/arvision/internal/adapters/driving/cli"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/services"
	"github.com/custodia-labs/arvision/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading settings: %v\n", err)
		return err
	}

	store, err := openStore(settings)
	if err != nil && settings.Descriptors.Source == domain.SourceSQLite {
		fmt.Fprintf(os.Stderr, "Error: opening descriptor database: %v\n", err)
		return err
	}
	if err != nil {
		logger.Warn("descriptor database unavailable: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	source, err := openSource(settings, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening descriptor source: %v\n", err)
		return err
	}

	recognition := services.NewRecognitionService(nil, source,
		services.WithThreshold(settings.Recognition.Threshold))

	hub := relay.NewHub(false)
	var cam driven.Camera
	if camera.Available() {
		cam = camera.New()
	}

	sessions := services.NewSessionManager(hub, cam, recognition, func() domain.AppSettings {
		s, err := settingsService.Get()
		if err != nil {
			return domain.DefaultAppSettings()
		}
		return *s
	})
	defer func() {
		if err := sessions.CloseAll(); err != nil {
			logger.Warn("closing sessions: %v", err)
		}
	}()

	svc := cli.Services{
		Recognition: recognition,
		Settings:    settingsService,
		Sessions:    sessions,
		Install:     services.NewInstallService(settingsService),
		Source:      source,
		Camera:      cam,
		Events:      hub,
	}
	if store != nil {
		svc.Store = store
	}
	cli.SetServices(svc)
	cli.SetVersion(version)
	cli.SetTUIConfig(&cli.TUIConfig{
		RecognitionService: recognition,
		SessionManager:     sessions,
		SettingsService:    settingsService,
	})

	return cli.Execute(ctx)
}

// openStore opens the descriptor database used by the sqlite source and by
// descriptors import.
func openStore(settings *domain.AppSettings) (*sqlite.Store, error) {
	dir := ""
	if settings.Descriptors.Source == domain.SourceSQLite {
		dir = settings.Descriptors.Dir
	}
	return sqlite.NewStore(dir)
}

func openSource(settings *domain.AppSettings, store *sqlite.Store) (driven.DescriptorSource, error) {
	switch settings.Descriptors.Source {
	case domain.SourceDir:
		return local.New(settings.Descriptors.Dir)
	case domain.SourceSQLite:
		return store, nil
	default:
		return remote.New(settings.Descriptors.BaseURL, remote.WithRateLimit(settings.Descriptors.RateLimit))
	}
}
