package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsCmd_Show(t *testing.T) {
	setupTestServices(t)

	for _, args := range [][]string{{"settings"}, {"settings", "show"}} {
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Current Settings")
		assert.Contains(t, out, "Threshold: 0.60")
		assert.Contains(t, out, "Source: HTTP (static file server)")
		assert.Contains(t, out, "Base URL: "+domain.DefaultDescriptorBaseURL)
		assert.Contains(t, out, "[Session]")
		assert.Contains(t, out, "Device: default")
		assert.Contains(t, out, "Configuration is valid.")
	}
}

func TestSettingsSourceCmd(t *testing.T) {
	t.Run("dir with location", func(t *testing.T) {
		env := setupTestServices(t)
		out, err := execute(t, "settings", "source", "dir", "/srv/descriptors")
		require.NoError(t, err)
		assert.Contains(t, out, "Descriptor source set to Local directory")

		saved, err := env.settings.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.SourceDir, saved.Descriptors.Source)
		assert.Equal(t, "/srv/descriptors", saved.Descriptors.Dir)
	})

	t.Run("http falls back to the default base URL", func(t *testing.T) {
		env := setupTestServices(t)
		_, err := execute(t, "settings", "source", "HTTP")
		require.NoError(t, err)

		saved, err := env.settings.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.SourceHTTP, saved.Descriptors.Source)
		assert.Equal(t, domain.DefaultDescriptorBaseURL, saved.Descriptors.BaseURL)
	})

	t.Run("dir needs a location", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "settings", "source", "dir")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown kind", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "settings", "source", "ftp")
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}

func TestSettingsCameraCmd(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "camera", "--device", "1", "--width", "640", "--height", "480")
	require.NoError(t, err)
	assert.Contains(t, out, "Camera set to device 1 at 640x480")

	saved, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.CameraSettings{Device: 1, Width: 640, Height: 480}, saved.Camera)

	_, err = execute(t, "settings", "camera", "--width", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsWizardCmd(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeWithInput(t, "0.7\n3\n/var/lib/arvision\n", "settings", "wizard")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration Complete!")
	saved, err := env.settings.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, saved.Recognition.Threshold, 1e-9)
	assert.Equal(t, domain.SourceSQLite, saved.Descriptors.Source)
	assert.Equal(t, "/var/lib/arvision", saved.Descriptors.Dir)
	assert.InDelta(t, 0.7, env.recognition.DefaultThreshold(), 1e-9)
}

func TestSettingsWizardCmd_KeepsDefaultsOnEmptyInput(t *testing.T) {
	env := setupTestServices(t)

	_, err := executeWithInput(t, "\n\n\n", "settings", "wizard")

	require.NoError(t, err)
	saved, err := env.settings.Get()
	require.NoError(t, err)
	assert.InDelta(t, domain.DefaultSimilarityThreshold, saved.Recognition.Threshold, 1e-9)
	assert.Equal(t, domain.SourceHTTP, saved.Descriptors.Source)
	assert.Equal(t, domain.DefaultDescriptorBaseURL, saved.Descriptors.BaseURL)
}

func TestSettingsWizardCmd_RejectsBadThreshold(t *testing.T) {
	setupTestServices(t)

	_, err := executeWithInput(t, "loud\n", "settings", "wizard")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
