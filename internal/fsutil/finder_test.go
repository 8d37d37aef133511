package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

// TestFindFilesByExtensions walks nested directories, matches any of the
// given extensions, and returns sorted results.
func TestFindFilesByExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b", "desc.yml"))
	touch(t, filepath.Join(dir, "a", "workflow.yaml"))
	touch(t, filepath.Join(dir, "a", "weights.bin"))
	touch(t, filepath.Join(dir, "readme.txt"))

	files, err := FindFilesByExtensions(dir, ".yaml", ".yml")

	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a", "workflow.yaml"),
		filepath.Join(dir, "b", "desc.yml"),
	}, files)
}

// TestFindFilesByExtensions_NoMatches returns an empty slice, not an error.
func TestFindFilesByExtensions_NoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "weights.bin"))

	files, err := FindFilesByExtensions(dir, ".yaml")

	require.NoError(t, err)
	assert.Empty(t, files)
}

// TestFindFilesByExtensions_MissingRoot propagates the walk error.
func TestFindFilesByExtensions_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtensions(filepath.Join(t.TempDir(), "absent"), ".yaml")
	require.Error(t, err)
}

// TestFindFilesByExtensions_PanicsWithoutExtension documents the contract
// violation as a programmer error.
func TestFindFilesByExtensions_PanicsWithoutExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtensions(t.TempDir()) })
	assert.Panics(t, func() { _, _ = FindFilesByExtensions(t.TempDir(), "") })
}
