package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brand-video-backend/internal/storage"
)

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := storage.NewFileStore("  ")
	assert.Error(t, err)
}

func TestImport_MovesFile(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "videos"))
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "render.mp4.partial")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))

	assert.False(t, store.Exists("abc.mp4"))

	dst, err := store.Import(context.Background(), "abc.mp4", src)
	require.NoError(t, err)

	assert.True(t, store.Exists("abc.mp4"))
	assert.NoFileExists(t, src)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))
}

func TestImport_MissingSource(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Import(context.Background(), "abc.mp4", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.False(t, store.Exists("abc.mp4"))
}

func TestImport_CancelledContext(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Import(ctx, "abc.mp4", "whatever")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPath_RejectsTraversal(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../etc/passwd", "a/../../b"} {
		_, err := store.Path(key)
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
		assert.False(t, store.Exists(key))
	}

	p, err := store.Path("/abs/name.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.BasePath(), "abs", "name.mp4"), p)
}

func TestExists_DirectoryIsNotArtifact(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(store.BasePath(), "dir.mp4"), 0o755))

	assert.False(t, store.Exists("dir.mp4"))
}
