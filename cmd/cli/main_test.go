package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(out, errW, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, errW.String(), "Usage:", "Expected help text to be printed to the error stream")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(out, errW, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_LoadsBundle(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Build a minimal zip bundle holding only a description.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("workflow.yaml")
	require.NoError(t, err)
	_, err = w.Write([]byte("units:\n  - name: only\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	bundlePath := filepath.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, os.WriteFile(bundlePath, buf.Bytes(), 0o600))

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, errW, []string{bundlePath})

	// --- Assert ---
	require.NoError(t, runErr)
	require.Contains(t, out.String(), "Unit: only", "the workflow structure should be printed to stdout")
}

func TestRun_LoadFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A file that is no recognized archive format must fail the load.
	bundlePath := filepath.Join(t.TempDir(), "noise.zip")
	require.NoError(t, os.WriteFile(bundlePath, bytes.Repeat([]byte{0x42}, 256), 0o600))

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}

	// --- Act ---
	err := run(out, errW, []string{bundlePath})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load workflow bundle")
}
