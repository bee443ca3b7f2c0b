package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrMissingRecognitionService,
		ErrMissingSessionManager,
		ErrInvalidPorts,
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrMissingRecognitionService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingRecognitionService.Error(), "recognition service")
}

func TestErrMissingSessionManager_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSessionManager.Error(), "session manager")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
