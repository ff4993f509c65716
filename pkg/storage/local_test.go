package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Save(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	info, err := s.Save(ctx, "output.csv", "text/csv", strings.NewReader("id,total\n1,97.33\n"))
	require.NoError(t, err)
	assert.Equal(t, "output.csv", info.Name)
	assert.Equal(t, int64(18), info.Size)
	assert.Equal(t, "text/csv", info.ContentType)
	assert.Equal(t, filepath.Join(dir, "output.csv"), info.Path)
	assert.NotEqual(t, uuid.Nil, info.ID)

	data, err := os.ReadFile(info.Path)
	require.NoError(t, err)
	assert.Equal(t, "id,total\n1,97.33\n", string(data))
}

func TestLocalStorage_WritesOnlyTheNamedFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "output.xlsx", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"output.xlsx"}, names)
}

func TestLocalStorage_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Save(ctx, "output.csv", "text/csv", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = s.Save(ctx, "output.csv", "text/csv", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "output.csv"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temporary file left behind: %s", e.Name())
	}
}

func TestLocalStorage_SanitizesName(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	info, err := s.Save(context.Background(), "../escape.csv", "text/csv", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "__escape.csv"), info.Path)
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, "output.csv", "text/csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_DefaultsToLocal(t *testing.T) {
	s, err := New(&Config{LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)
}
