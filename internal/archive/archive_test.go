package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip builds a zip container on disk from a name->content map.
// Directory entries use a trailing slash and nil content.
func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if content != nil {
			_, err = w.Write(content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeTarGz builds a gzip-compressed tar container on disk.
func writeTarGz(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// TestExtract_Zip verifies a zip bundle lands under the target directory
// with relative paths preserved.
func TestExtract_Zip(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	writeZip(t, bundle, map[string][]byte{
		"workflow.yaml":     []byte("units: []\n"),
		"weights/conv1.bin": {1, 2, 3, 4},
		"weights/conv2.bin": {5, 6, 7, 8},
		"weights/empty.bin": {},
		"nested/dir/":       nil,
	})
	target := filepath.Join(dir, "out")

	err := Extract(context.Background(), bundle, target)

	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(target, "weights", "conv1.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
	assert.FileExists(t, filepath.Join(target, "workflow.yaml"))
	assert.FileExists(t, filepath.Join(target, "weights", "empty.bin"))
	assert.DirExists(t, filepath.Join(target, "nested", "dir"))
}

// TestExtract_TarGz verifies gzip-compressed tar bundles are detected by
// magic bytes even without a .tar.gz name.
func TestExtract_TarGz(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.dat")
	writeTarGz(t, bundle, map[string][]byte{
		"workflow.yaml":   []byte("units: []\n"),
		"weights/fc1.bin": {9, 9, 9, 9},
	})
	target := filepath.Join(dir, "out")

	err := Extract(context.Background(), bundle, target)

	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(target, "weights", "fc1.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9, 9, 9}, got)
}

// TestExtract_MissingArchive fails when the container does not exist.
func TestExtract_MissingArchive(t *testing.T) {
	dir := t.TempDir()

	err := Extract(context.Background(), filepath.Join(dir, "absent.zip"), filepath.Join(dir, "out"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestExtract_Garbage rejects files that are no known container format.
func TestExtract_Garbage(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "noise.bin")
	require.NoError(t, os.WriteFile(bundle, bytes.Repeat([]byte{0xAB}, 1024), 0o644))

	err := Extract(context.Background(), bundle, filepath.Join(dir, "out"))

	require.ErrorIs(t, err, ErrUnknownFormat)
}

// TestExtract_EmptyFile rejects zero-byte files outright.
func TestExtract_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(bundle, nil, 0o644))

	err := Extract(context.Background(), bundle, filepath.Join(dir, "out"))

	require.ErrorIs(t, err, ErrUnknownFormat)
}

// TestExtract_PathTraversal refuses entries that would escape the target
// directory.
func TestExtract_PathTraversal(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "evil.tgz")
	writeTarGz(t, bundle, map[string][]byte{
		"../escape.bin": {1, 2, 3, 4},
	})
	target := filepath.Join(dir, "out")

	err := Extract(context.Background(), bundle, target)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the target directory")
	assert.NoFileExists(t, filepath.Join(dir, "escape.bin"))
}

// TestExtract_Cancelled aborts between entries once the context is done.
func TestExtract_Cancelled(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	writeZip(t, bundle, map[string][]byte{"workflow.yaml": []byte("units: []\n")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Extract(ctx, bundle, filepath.Join(dir, "out"))

	require.ErrorIs(t, err, context.Canceled)
}
