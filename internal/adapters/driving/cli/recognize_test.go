package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

func writeCandidate(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidate.jpg")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestRecognizeCmd_Flags(t *testing.T) {
	flag := recognizeCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
	assert.Equal(t, "fset", flag.DefValue)

	flag = recognizeCmd.Flags().Lookup("threshold")
	require.NotNil(t, flag)
	assert.Equal(t, "t", flag.Shorthand)
}

func TestRecognizeCmd_Match(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "recognize", "th", writeCandidate(t, 120))

	require.NoError(t, err)
	assert.Contains(t, out, "Match: th (fset) similarity 1.0000, threshold 0.60")
}

func TestRecognizeCmd_NoMatch(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "recognize", "th", writeCandidate(t, 60))

	require.NoError(t, err)
	assert.Contains(t, out, "No match: th (fset) similarity 0.5000, threshold 0.60")
}

func TestRecognizeCmd_ThresholdOverride(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "recognize", "th", writeCandidate(t, 60), "--threshold", "0.4")

	require.NoError(t, err)
	assert.Contains(t, out, "Match: th (fset) similarity 0.5000, threshold 0.40")
}

func TestRecognizeCmd_Locator(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "recognize", "th", "--locator", "/uploads/candidate.jpg")

	require.NoError(t, err)
	assert.Contains(t, out, "Match: th (fset) similarity 0.8333")
}

func TestRecognizeCmd_ThresholdAboveOne(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "recognize", "th", writeCandidate(t, 120), "-t", "1.5")

	require.NoError(t, err)
	assert.Contains(t, out, "No match: th (fset) similarity 1.0000, threshold 1.50")
}

func TestRecognizeCmd_JSON(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "recognize", "th", writeCandidate(t, 120), "--json")

	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, true, result["match"])
	assert.Equal(t, "th", result["imageName"])
}

func TestRecognizeCmd_Failures(t *testing.T) {
	t.Run("missing descriptor", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "recognize", "th", writeCandidate(t, 10), "-f", "fset3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recognition failed")
	})

	t.Run("no candidate", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "recognize", "th")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("two candidates", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "recognize", "th", writeCandidate(t, 10), "--locator", "/uploads/candidate.jpg")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("camera not configured", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "recognize", "th", "--camera")
		assert.ErrorIs(t, err, domain.ErrCameraNotFound)
	})

	t.Run("bad format", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "recognize", "th", writeCandidate(t, 10), "-f", "gif")
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}
