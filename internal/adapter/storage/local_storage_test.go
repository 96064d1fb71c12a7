package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shakib522/Sound-Extractor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*LocalStorage, config.StorageConfig) {
	t.Helper()
	root := t.TempDir()
	cfg := config.StorageConfig{
		UploadDir: filepath.Join(root, "uploads"),
		OutputDir: filepath.Join(root, "outputs"),
	}
	s, err := NewLocalStorage(cfg)
	require.NoError(t, err)
	return s, cfg
}

func TestNewLocalStorage_CreatesDirs(t *testing.T) {
	_, cfg := newTestStorage(t)

	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLocalStorage_SaveAndDeleteUpload(t *testing.T) {
	ctx := context.Background()
	s, cfg := newTestStorage(t)

	path, err := s.SaveUpload(ctx, "../../etc/song.mp3", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, cfg.UploadDir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_song.mp3"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteUpload(ctx, path))
	require.NoError(t, s.DeleteUpload(ctx, path))

	exists, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_SaveUploadUniqueNames(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	first, err := s.SaveUpload(ctx, "song.wav", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := s.SaveUpload(ctx, "song.wav", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLocalStorage_ExistsRejectsDirectory(t *testing.T) {
	s, cfg := newTestStorage(t)

	exists, err := s.Exists(context.Background(), cfg.OutputDir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_TaskDir(t *testing.T) {
	ctx := context.Background()
	s, cfg := newTestStorage(t)
	id := uuid.New()

	dir, err := s.CreateTaskDir(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, id.String()), dir)
	assert.Equal(t, dir, s.TaskDir(id))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "input"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "vocals.wav"), []byte("x"), 0o644))

	require.NoError(t, s.RemoveTaskDir(ctx, id))
	_, err = os.Stat(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Повторное удаление не ошибка
	assert.NoError(t, s.RemoveTaskDir(ctx, id))
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7/vocals.wav", ObjectKey(id, "vocals.wav"))
}
