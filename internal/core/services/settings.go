package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyThreshold         = "recognition.threshold"
	keyPollInterval      = "session.poll_interval_ms"
	keyEngineTimeout     = "session.engine_timeout_ms"
	keyLoadingTimeout    = "session.loading_timeout_ms"
	keyDescriptorSource  = "descriptors.source"
	keyDescriptorBaseURL = "descriptors.base_url"
	keyDescriptorDir     = "descriptors.dir"
	keyDescriptorRate    = "descriptors.rate_limit"
	keyCameraDevice      = "camera.device"
	keyCameraWidth       = "camera.width"
	keyCameraHeight      = "camera.height"
	keyInstalled         = "install.installed"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Recognition: domain.RecognitionSettings{
			Threshold: s.getThreshold(d.Recognition.Threshold),
		},
		Session: domain.SessionTiming{
			PollInterval:   s.getMillis(keyPollInterval, d.Session.PollInterval),
			EngineTimeout:  s.getMillis(keyEngineTimeout, d.Session.EngineTimeout),
			LoadingTimeout: s.getMillis(keyLoadingTimeout, d.Session.LoadingTimeout),
		},
		Descriptors: domain.DescriptorSettings{
			Source:    s.getSource(d.Descriptors.Source),
			BaseURL:   s.getString(keyDescriptorBaseURL, d.Descriptors.BaseURL),
			Dir:       s.configStore.GetString(keyDescriptorDir),
			RateLimit: s.getFloat(keyDescriptorRate, d.Descriptors.RateLimit),
		},
		Camera: domain.CameraSettings{
			Device: s.getInt(keyCameraDevice, d.Camera.Device),
			Width:  s.getInt(keyCameraWidth, d.Camera.Width),
			Height: s.getInt(keyCameraHeight, d.Camera.Height),
		},
		Install: domain.InstallSettings{
			Installed: s.configStore.GetBool(keyInstalled),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyThreshold, settings.Recognition.Threshold},
		{keyPollInterval, settings.Session.PollInterval.Milliseconds()},
		{keyEngineTimeout, settings.Session.EngineTimeout.Milliseconds()},
		{keyLoadingTimeout, settings.Session.LoadingTimeout.Milliseconds()},
		{keyDescriptorSource, settings.Descriptors.Source.String()},
		{keyDescriptorBaseURL, settings.Descriptors.BaseURL},
		{keyDescriptorDir, settings.Descriptors.Dir},
		{keyDescriptorRate, settings.Descriptors.RateLimit},
		{keyCameraDevice, settings.Camera.Device},
		{keyCameraWidth, settings.Camera.Width},
		{keyCameraHeight, settings.Camera.Height},
		{keyInstalled, settings.Install.Installed},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetThreshold updates the persisted default threshold.
func (s *SettingsService) SetThreshold(v float64) error {
	if !domain.ValidThreshold(v) {
		return fmt.Errorf("%w: threshold %v outside [0,1]", domain.ErrInvalidInput, v)
	}
	return s.configStore.Set(keyThreshold, v)
}

// SetDescriptorSource configures where descriptors are fetched from.
func (s *SettingsService) SetDescriptorSource(kind domain.DescriptorSourceKind, location string) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: descriptor source %q", domain.ErrInvalidInput, kind)
	}
	if err := s.configStore.Set(keyDescriptorSource, kind.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyDescriptorSource, err)
	}
	if location == "" {
		return nil
	}
	key := keyDescriptorDir
	if kind == domain.SourceHTTP {
		key = keyDescriptorBaseURL
	}
	if err := s.configStore.Set(key, location); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetCamera configures the local capture device.
func (s *SettingsService) SetCamera(device, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative camera resolution", domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Camera = domain.CameraSettings{Device: device, Width: width, Height: height}
	return s.Save(settings)
}

// SetInstalled records the install flag.
func (s *SettingsService) SetInstalled(installed bool) error {
	return s.configStore.Set(keyInstalled, installed)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	ms := s.configStore.GetInt(key)
	if ms <= 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *SettingsService) getThreshold(defaultVal float64) float64 {
	if _, exists := s.configStore.Get(keyThreshold); !exists {
		return defaultVal
	}
	v := s.configStore.GetFloat(keyThreshold)
	if !domain.ValidThreshold(v) {
		return defaultVal
	}
	return v
}

func (s *SettingsService) getSource(defaultVal domain.DescriptorSourceKind) domain.DescriptorSourceKind {
	val := s.configStore.GetString(keyDescriptorSource)
	if val == "" {
		return defaultVal
	}
	kind := domain.DescriptorSourceKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
