package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/fsutil"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadText(t *testing.T) {
	t.Parallel()

	t.Run("reads content and metadata", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "# Title\n\nbody\n")

		text, info, err := fsutil.ReadText(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nbody\n", text)
		assert.Equal(t, path, info.Path)
		assert.Equal(t, int64(len(text)), info.Size)
		assert.NotZero(t, info.Hash)
	})

	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.md") },
			wantErr: fsutil.ErrNotFound,
		},
		{
			name:    "directory",
			setup:   func(t *testing.T) string { return t.TempDir() },
			wantErr: fsutil.ErrIsDirectory,
		},
		{
			name:    "invalid utf-8",
			setup:   func(t *testing.T) string { return writeFile(t, "caf\xe9\n") },
			wantErr: fsutil.ErrNotText,
		},
		{
			name:    "nul byte",
			setup:   func(t *testing.T) string { return writeFile(t, "a\x00b") },
			wantErr: fsutil.ErrNotText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := fsutil.ReadText(context.Background(), tt.setup(t))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := fsutil.ReadText(ctx, "anypath")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestReadTextFrom(t *testing.T) {
	t.Parallel()

	text, err := fsutil.ReadTextFrom(context.Background(), strings.NewReader("# Title\n"), "<stdin>")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", text)

	_, err = fsutil.ReadTextFrom(context.Background(), strings.NewReader("a\x00b"), "<stdin>")
	require.ErrorIs(t, err, fsutil.ErrNotText)
	assert.Contains(t, err.Error(), "<stdin>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fsutil.ReadTextFrom(ctx, strings.NewReader("text"), "<stdin>")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	t.Run("unchanged file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "same")
		_, info, err := fsutil.ReadText(context.Background(), path)
		require.NoError(t, err)

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("content changed with same size and time", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "aaaa")
		_, info, err := fsutil.ReadText(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("bbbb"), 0o644))
		require.NoError(t, os.Chtimes(path, info.ModTime, info.ModTime))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified, "hash comparison must catch the change")
	})

	t.Run("size changed", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "short")
		_, info, err := fsutil.ReadText(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("much longer"), 0o644))
		require.NoError(t, os.Chtimes(path, time.Now(), info.ModTime))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("deleted file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "gone")
		_, info, err := fsutil.ReadText(context.Background(), path)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModified(context.Background(), nil)
		require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	})
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates file with default mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.yml")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("a: 1\n"), 0))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a: 1\n", string(got))

		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, fsutil.DefaultFileMode, stat.Mode().Perm())
	})

	t.Run("replaces existing file and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.yml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("new"), 0o600))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config", "mdstream", "out.yml")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))
		assert.FileExists(t, path)
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		parent := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(parent, []byte("x"), 0o600))
		require.Error(t, fsutil.WriteAtomic(context.Background(), filepath.Join(parent, "out.yml"), []byte("x"), 0))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		path := filepath.Join(t.TempDir(), "out.yml")
		require.ErrorIs(t, fsutil.WriteAtomic(ctx, path, []byte("x"), 0), context.Canceled)
		assert.NoFileExists(t, path)
	})
}
