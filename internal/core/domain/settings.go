package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// DescriptorSourceKind selects where descriptor payloads are fetched from.
type DescriptorSourceKind string

// Available descriptor sources.
const (
	// SourceHTTP fetches descriptors from a static file server.
	SourceHTTP DescriptorSourceKind = "http"

	// SourceDir reads descriptors from a local directory tree.
	SourceDir DescriptorSourceKind = "dir"

	// SourceSQLite reads descriptors from the local database.
	SourceSQLite DescriptorSourceKind = "sqlite"
)

// IsValid returns true if the source kind is recognised.
func (k DescriptorSourceKind) IsValid() bool {
	switch k {
	case SourceHTTP, SourceDir, SourceSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k DescriptorSourceKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the source.
func (k DescriptorSourceKind) Description() string {
	switch k {
	case SourceHTTP:
		return "HTTP (static file server)"
	case SourceDir:
		return "Local directory"
	case SourceSQLite:
		return "SQLite database"
	default:
		return unknownDescription
	}
}

// AllDescriptorSources returns all available descriptor source kinds.
func AllDescriptorSources() []DescriptorSourceKind {
	return []DescriptorSourceKind{SourceHTTP, SourceDir, SourceSQLite}
}

// RecognitionSettings holds recognition behaviour configuration.
type RecognitionSettings struct {
	// Threshold is the default acceptance threshold.
	Threshold float64
}

// DescriptorSettings holds descriptor source configuration.
type DescriptorSettings struct {
	// Source selects the backing store.
	Source DescriptorSourceKind

	// BaseURL is the server root for the HTTP source.
	BaseURL string

	// Dir is the root directory for the dir source.
	Dir string

	// RateLimit caps HTTP fetches per second. Zero disables limiting.
	RateLimit float64
}

// CameraSettings holds local camera configuration.
type CameraSettings struct {
	// Device is the capture device index; -1 selects the default.
	Device int

	// Width is the ideal frame width.
	Width int

	// Height is the ideal frame height.
	Height int
}

// Constraints returns the ideal acquisition request for a facing mode.
func (c CameraSettings) Constraints(facing FacingMode) CameraConstraints {
	return CameraConstraints{Device: c.Device, Width: c.Width, Height: c.Height, Facing: facing}
}

// InstallSettings holds persisted install state.
type InstallSettings struct {
	Installed bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Recognition RecognitionSettings
	Session     SessionTiming
	Descriptors DescriptorSettings
	Camera      CameraSettings
	Install     InstallSettings
}

// DefaultDescriptorBaseURL is where the bundled web client serves descriptors.
const DefaultDescriptorBaseURL = "http://localhost:3000"

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Recognition: RecognitionSettings{Threshold: DefaultSimilarityThreshold},
		Session:     DefaultSessionTiming(),
		Descriptors: DescriptorSettings{
			Source:    SourceHTTP,
			BaseURL:   DefaultDescriptorBaseURL,
			RateLimit: 10,
		},
		Camera: CameraSettings{
			Device: -1,
			Width:  DefaultCameraWidth,
			Height: DefaultCameraHeight,
		},
	}
}

// Validate checks the settings for values that cannot be used.
func (s AppSettings) Validate() error {
	if !ValidThreshold(s.Recognition.Threshold) {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidInput, s.Recognition.Threshold)
	}
	if !s.Descriptors.Source.IsValid() {
		return fmt.Errorf("%w: descriptor source %q", ErrInvalidInput, s.Descriptors.Source)
	}
	if s.Descriptors.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit", ErrInvalidInput)
	}
	for _, d := range []time.Duration{s.Session.PollInterval, s.Session.EngineTimeout, s.Session.LoadingTimeout} {
		if d < 0 {
			return fmt.Errorf("%w: negative session duration", ErrInvalidInput)
		}
	}
	return nil
}
