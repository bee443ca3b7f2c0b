package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/services"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())

	v, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "/a.fset", []byte("one")))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	data, err := store.Fetch(ctx, "/a.fset")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	v, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestStore_PutFetch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/x.iset", []byte{1, 2, 3}))
	require.NoError(t, store.Put(ctx, "/x.iset", []byte{4}))

	data, err := store.Fetch(ctx, "/x.iset")
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
}

func TestStore_PutEmptyPayload(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/empty.fset", nil))
	data, err := store.Fetch(ctx, "/empty.fset")
	require.NoError(t, err)
	assert.Empty(t, data)

	assert.ErrorIs(t, store.Put(ctx, "", []byte("x")), domain.ErrInvalidInput)
}

func TestStore_FetchMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Fetch(context.Background(), "/nope.fset")
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorIs(t, err, domain.ErrDescriptorMissing)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, loc := range []string{"/b.fset", "/a.iset", "/c.mind"} {
		require.NoError(t, store.Put(ctx, loc, []byte(loc)))
	}

	locs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.iset", "/b.fset", "/c.mind"}, locs)

	require.NoError(t, store.Delete(ctx, "/b.fset"))
	assert.ErrorIs(t, store.Delete(ctx, "/b.fset"), domain.ErrNotFound)

	locs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.iset", "/c.mind"}, locs)
}

func TestStore_ServesRecognition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	img, ok := domain.DefaultCatalog().Lookup("th")
	require.True(t, ok)
	loc, ok := img.Locator(domain.FormatISet)
	require.True(t, ok)
	require.NoError(t, store.Put(ctx, loc, make([]byte, 120)))

	svc := services.NewRecognitionService(nil, store)
	res := svc.Recognize(ctx, domain.CandidateBytes(make([]byte, 100)), "th", domain.FormatISet, nil)
	require.Empty(t, res.Error)
	assert.InDelta(t, 100.0/120.0, res.Similarity, 1e-9)
	assert.True(t, res.Match)
}
