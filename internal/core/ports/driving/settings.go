package driving

import "github.com/custodia-labs/arvision/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetThreshold updates the persisted default threshold.
	SetThreshold(v float64) error

	// SetDescriptorSource configures where descriptors are fetched from.
	// location is a base URL for HTTP and a path otherwise.
	SetDescriptorSource(kind domain.DescriptorSourceKind, location string) error

	// SetCamera configures the local capture device.
	SetCamera(device, width, height int) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
