package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrFetchFailed", ErrFetchFailed},
		{"ErrDescriptorMissing", ErrDescriptorMissing},
		{"ErrEngineLoad", ErrEngineLoad},
		{"ErrEngineTimeout", ErrEngineTimeout},
		{"ErrEngineRuntime", ErrEngineRuntime},
		{"ErrCameraPermissionDenied", ErrCameraPermissionDenied},
		{"ErrCameraNotFound", ErrCameraNotFound},
		{"ErrCameraInUse", ErrCameraInUse},
		{"ErrCameraConstraints", ErrCameraConstraints},
		{"ErrSessionClosed", ErrSessionClosed},
		{"ErrSessionStarted", ErrSessionStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrNotFound tests ErrNotFound error
func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

// TestErrInvalidInput tests ErrInvalidInput error
func TestErrInvalidInput(t *testing.T) {
	assert.Equal(t, "invalid input", ErrInvalidInput.Error())
	assert.False(t, errors.Is(ErrInvalidInput, ErrNotFound))
}

// TestErrors_Distinct tests that the camera errors do not alias each other
func TestErrors_Distinct(t *testing.T) {
	camera := []error{ErrCameraPermissionDenied, ErrCameraNotFound, ErrCameraInUse, ErrCameraConstraints}
	for i, a := range camera {
		for j, b := range camera {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}

// TestErrors_Wrapping tests that wrapped errors can be unwrapped
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("load personne.fset: %w", ErrFetchFailed)
	assert.True(t, errors.Is(wrapped, ErrFetchFailed))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Contains(t, wrapped.Error(), "descriptor fetch failed")
}
