package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Ensure InstallService implements the interface.
var _ driving.InstallService = (*InstallService)(nil)

// InstallService holds a deferred install prompt and the persisted install flag.
type InstallService struct {
	settings *SettingsService

	mu     sync.Mutex
	prompt domain.PromptFunc
}

// NewInstallService creates an install service persisting through settings.
func NewInstallService(settings *SettingsService) *InstallService {
	return &InstallService{settings: settings}
}

// CapturePrompt holds a deferred install prompt for later replay.
// Prompts captured after installation are discarded.
func (s *InstallService) CapturePrompt(prompt domain.PromptFunc) {
	if s.installed() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = prompt
}

// State reports the current install state for a client.
func (s *InstallService) State(userAgent string, standalone bool) domain.InstallState {
	s.mu.Lock()
	held := s.prompt != nil
	s.mu.Unlock()

	installed := standalone || s.installed()
	return domain.InstallState{
		Installed:   installed,
		Installable: held && !installed,
		IOS:         domain.IsIOS(userAgent),
		Standalone:  standalone,
	}
}

// Install replays the deferred prompt.
func (s *InstallService) Install(ctx context.Context, userAgent string) (bool, error) {
	if s.installed() {
		return true, nil
	}

	s.mu.Lock()
	prompt := s.prompt
	s.mu.Unlock()

	if prompt == nil {
		if domain.IsIOS(userAgent) {
			return false, nil
		}
		return false, fmt.Errorf("%w: no install prompt available", domain.ErrNotFound)
	}

	outcome, err := prompt(ctx)
	if err != nil {
		return false, fmt.Errorf("install prompt: %w", err)
	}
	if outcome != domain.InstallAccepted {
		logger.Info("install prompt dismissed")
		return false, nil
	}

	s.mu.Lock()
	s.prompt = nil
	s.mu.Unlock()
	if err := s.settings.SetInstalled(true); err != nil {
		return true, fmt.Errorf("persist install state: %w", err)
	}
	logger.Info("app installed")
	return true, nil
}

// Instructions returns manual install steps for clients without a prompt.
func (s *InstallService) Instructions() []string {
	return domain.IOSInstallInstructions()
}

func (s *InstallService) installed() bool {
	settings, err := s.settings.Get()
	if err != nil {
		return false
	}
	return settings.Install.Installed
}
