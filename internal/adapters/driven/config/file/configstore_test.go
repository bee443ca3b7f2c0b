package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "arvision")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("[[[not toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("descriptors.source", "sqlite"))
	require.NoError(t, store.Set("camera.width", 1280))
	require.NoError(t, store.Set("recognition.threshold", 0.75))
	require.NoError(t, store.Set("install.installed", true))

	assert.Equal(t, "sqlite", store.GetString("descriptors.source"))
	assert.Equal(t, 1280, store.GetInt("camera.width"))
	assert.InDelta(t, 0.75, store.GetFloat("recognition.threshold"), 1e-9)
	assert.InDelta(t, 1280.0, store.GetFloat("camera.width"), 1e-9)
	assert.True(t, store.GetBool("install.installed"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "text"))

	assert.Equal(t, 0, store.GetInt("k"))
	assert.Zero(t, store.GetFloat("k"))
	assert.False(t, store.GetBool("k"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("recognition.threshold", 0.5))
	require.NoError(t, store.Set("camera.width", 640))
	require.NoError(t, store.Set("camera.height", 480))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[camera]")
	assert.Contains(t, string(raw), "[recognition]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, reloaded.GetFloat("recognition.threshold"), 1e-9)
	assert.Equal(t, 640, reloaded.GetInt("camera.width"))
	assert.Equal(t, 480, reloaded.GetInt("camera.height"))
	assert.Equal(t, []string{"camera.height", "camera.width", "recognition.threshold"}, reloaded.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := "[descriptors]\nsource = \"dir\"\ndir = \"/srv/descriptors\"\n\n[recognition]\nthreshold = 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "dir", store.GetString("descriptors.source"))
	assert.Equal(t, "/srv/descriptors", store.GetString("descriptors.dir"))
	assert.InDelta(t, 1.0, store.GetFloat("recognition.threshold"), 1e-9)
}

func TestConfigStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("camera.device", 2))
	require.NoError(t, store.Delete("camera.device"))

	_, ok := store.Get("camera.device")
	assert.False(t, ok)

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Keys())
}

func TestConfigStore_SetRejectsBadKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("", 1))
	assert.Error(t, store.Set(".a", 1))
	assert.Error(t, store.Set("a.", 1))
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("camera.width", 1))
	assert.Error(t, store.Set("camera", "x"))
	_, ok := store.Get("camera")
	assert.False(t, ok)
}

func TestFlattenAndNest(t *testing.T) {
	flat := flattenMap(map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}, "")
	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flat)

	nested, err := nestMap(flat)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}, nested)
}
