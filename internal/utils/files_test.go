package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesWithSuffix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
	for _, name := range []string{"x.cs.meta", "a/y.cs.meta", "a/b/z.cs", "a/b/w.cs.meta"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}

	files, err := FindFilesWithSuffix(dir, ".cs.meta")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "b", "w.cs.meta"),
		filepath.Join(dir, "a", "y.cs.meta"),
		filepath.Join(dir, "x.cs.meta"),
	}, files)
}

func TestFindFilesWithSuffix_MissingDir(t *testing.T) {
	_, err := FindFilesWithSuffix(filepath.Join(t.TempDir(), "nope"), ".meta")
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.fire")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestWriteFileAtomic_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteFileAtomic(path, []byte("[]"), 0644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Dir(path)))
}
