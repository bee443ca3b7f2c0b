package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromName(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"NotAllowedError", ErrCameraPermissionDenied},
		{"NotFoundError", ErrCameraNotFound},
		{"NotReadableError", ErrCameraInUse},
		{"OverconstrainedError", ErrCameraConstraints},
		{"EngineLoadError", ErrEngineLoad},
		{"TypeError", ErrEngineRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ErrorFromName(tt.name, "")
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryCameraPermission, CategoryOf(fmt.Errorf("x: %w", ErrCameraPermissionDenied)))
	assert.Equal(t, CategoryCameraInUse, CategoryOf(ErrCameraInUse))
	assert.Equal(t, CategoryEngineLoad, CategoryOf(ErrEngineLoad))
	assert.Equal(t, CategoryEngineRuntime, CategoryOf(errors.New("anything")))
	assert.Equal(t, CategoryUnknown, CategoryOf(nil))
}

func TestNewSessionError(t *testing.T) {
	cause := ErrorFromName("NotAllowedError", "Permission denied")
	se := NewSessionError(cause, PlatformIOS)

	assert.Equal(t, CategoryCameraPermission, se.Category)
	assert.Equal(t, "Camera access denied", se.Title)
	assert.NotEmpty(t, se.Message)
	require.NotEmpty(t, se.Guidance)
	assert.Contains(t, se.Guidance[0], "Safari")
	assert.ErrorIs(t, se, ErrCameraPermissionDenied)

	// An already classified error keeps its category.
	assert.Equal(t, CategoryCameraPermission, CategoryOf(fmt.Errorf("wrap: %w", se)))
}

func TestIsCameraFallthrough(t *testing.T) {
	assert.True(t, IsCameraFallthrough(ErrCameraConstraints))
	assert.True(t, IsCameraFallthrough(fmt.Errorf("w: %w", ErrCameraNotFound)))
	assert.False(t, IsCameraFallthrough(ErrCameraPermissionDenied))
	assert.False(t, IsCameraFallthrough(ErrCameraInUse))
}
