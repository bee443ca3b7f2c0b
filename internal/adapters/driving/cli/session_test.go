package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

func writeEventLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestSessionCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range sessionCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["replay"])
	assert.Contains(t, sessionCmd.Long, "mindar-image, mindar-face, legacy-ar")
}

func TestSessionRunCmd_Flags(t *testing.T) {
	flag := sessionRunCmd.Flags().Lookup("events")
	require.NotNil(t, flag)
	assert.Equal(t, "-", flag.DefValue)
	require.NotNil(t, sessionRunCmd.Flags().Lookup("plain"))
	require.NotNil(t, sessionReplayCmd.Flags().Lookup("follow"))
	assert.Nil(t, sessionReplayCmd.Flags().Lookup("plain"))
}

func TestSessionReplay_TracksTarget(t *testing.T) {
	env := setupTestServices(t)
	path := writeEventLog(t,
		`{"type":"engine-ready"}`,
		`{"type":"target-found","targetIndex":0}`,
	)

	out, err := execute(t, "session", "replay", "mindar-image", path)

	require.NoError(t, err)
	assert.Contains(t, out, "waiting_for_engine")
	assert.Contains(t, out, "tracking=true object=personne")
	assert.Contains(t, out, "torn_down")
	assert.Less(t, strings.Index(out, "tracking=true"), strings.Index(out, "torn_down"))
	assert.Empty(t, env.manager.List())
}

func TestSessionReplay_SkipsMalformedLines(t *testing.T) {
	setupTestServices(t)
	path := writeEventLog(t,
		`not json`,
		`{"type":"engine-ready"}`,
		`{"type":"target-found","targetId":"personne"}`,
		`{"type":"target-lost","targetId":"personne"}`,
	)

	out, err := execute(t, "session", "replay", "mindar-image", path)

	require.NoError(t, err)
	assert.Contains(t, out, "tracking=true")
	found := strings.Index(out, "tracking=true")
	assert.Contains(t, out[found:], "ready              loading=false tracking=false")
}

func TestSessionReplay_EngineError(t *testing.T) {
	setupTestServices(t)
	path := writeEventLog(t,
		`{"type":"engine-error","errorName":"NotAllowedError","message":"denied"}`,
	)

	out, _ := execute(t, "session", "replay", "mindar-face", path)

	assert.Regexp(t, `(?m)^error\s+loading=false tracking=false error="`, out)
}

func TestSessionReplay_Errors(t *testing.T) {
	t.Run("unknown variant", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "session", "replay", "holo-lens", writeEventLog(t, `{"type":"engine-ready"}`))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing event log", func(t *testing.T) {
		env := setupTestServices(t)
		_, err := execute(t, "session", "replay", "mindar-image", filepath.Join(t.TempDir(), "none.jsonl"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event log")
		assert.Empty(t, env.manager.List())
	})

	t.Run("targets on a fixed variant", func(t *testing.T) {
		setupTestServices(t)
		_, err := execute(t, "session", "replay", "mindar-image", writeEventLog(t), "--targets", "th")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no event relay", func(t *testing.T) {
		setupTestServices(t)
		eventRouter = nil
		_, err := execute(t, "session", "replay", "mindar-image", writeEventLog(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event relay not configured")
	})
}

func TestSessionRun_ReadsStdin(t *testing.T) {
	setupTestServices(t)
	input := `{"type":"engine-ready"}` + "\n" + `{"type":"target-found","targetIndex":0}` + "\n"

	out, err := executeWithInput(t, input, "session", "run", "mindar-image")

	require.NoError(t, err)
	assert.Contains(t, out, "tracking=true object=personne")
}

func TestFormatState(t *testing.T) {
	tests := []struct {
		name  string
		state domain.SessionState
		want  string
	}{
		{
			name:  "loading",
			state: domain.SessionState{Phase: domain.PhaseWaitingForEngine, Loading: true},
			want:  "waiting_for_engine loading=true tracking=false",
		},
		{
			name:  "tracking a known object",
			state: domain.SessionState{Phase: domain.PhaseReady, Tracking: true, DetectedObjectID: "personne"},
			want:  "ready              loading=false tracking=true object=personne (",
		},
		{
			name:  "error",
			state: domain.SessionState{Phase: domain.PhaseError, Error: &domain.SessionError{Title: "No camera found"}},
			want:  `error              loading=false tracking=false error="No camera found"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(formatState(tt.state), tt.want), formatState(tt.state))
		})
	}
}

func TestSplitTargets(t *testing.T) {
	assert.Nil(t, splitTargets(""))
	assert.Equal(t, []string{"th", "logoGifty144x144"}, splitTargets(" th, ,logoGifty144x144 "))
}
