// Package archive stages the contents of a workflow bundle on disk. A bundle
// is a zip or tar container (the latter optionally gzip-compressed); every
// entry is written under a caller-supplied target directory with its
// relative path preserved.
//
// Extraction is all-or-nothing: the first entry that fails to read or write
// aborts the whole operation. The caller owns the target directory and is
// responsible for removing it, including after a failed extraction.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/vk/flowpack/internal/ctxlog"
)

// ErrUnknownFormat reports a file that is neither a zip container, a gzip
// stream, nor a tar stream.
var ErrUnknownFormat = errors.New("unrecognized archive format")

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Extract reads the container at archivePath and writes every entry's
// decompressed bytes under targetDir, creating directories as needed. The
// container kind is detected from the file's leading bytes, not its name.
func Extract(ctx context.Context, archivePath, targetDir string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Extracting archive.", "archive", archivePath, "target", targetDir)

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read archive header %s: %w", archivePath, err)
	}
	head = head[:n]
	if len(head) == 0 {
		return fmt.Errorf("archive %s: %w: file is empty", archivePath, ErrUnknownFormat)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind archive %s: %w", archivePath, err)
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
	}

	switch {
	case bytes.HasPrefix(head, zipMagic):
		err = extractZip(ctx, f, targetDir)
	case bytes.HasPrefix(head, gzipMagic):
		var gz *gzip.Reader
		gz, err = gzip.NewReader(f)
		if err != nil {
			err = fmt.Errorf("failed to open gzip stream: %w", err)
			break
		}
		defer gz.Close()
		err = extractTar(ctx, gz, targetDir)
	default:
		// Tar has no leading magic; its checksum validation rejects
		// arbitrary files on the first header read.
		err = extractTar(ctx, f, targetDir)
	}
	if err != nil {
		return fmt.Errorf("archive %s: %w", archivePath, err)
	}

	logger.Debug("Archive extracted successfully.", "archive", archivePath)
	return nil
}

func extractZip(ctx context.Context, f *os.File, targetDir string) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to read zip directory: %w", err)
	}

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest, err := entryPath(targetDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("failed to create directory entry %s: %w", entry.Name, err)
			}
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
		}
		err = writeEntry(dest, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to extract entry %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractTar(ctx context.Context, r io.Reader, targetDir string) error {
	tr := tar.NewReader(r)
	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if first {
				// A failed first header means this was never a tar
				// stream to begin with.
				return fmt.Errorf("%w: %v", ErrUnknownFormat, err)
			}
			return fmt.Errorf("corrupt tar stream: %w", err)
		}
		dest, err := entryPath(targetDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("failed to create directory entry %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(dest, tr); err != nil {
				return fmt.Errorf("failed to extract entry %s: %w", hdr.Name, err)
			}
		default:
			// Bundles only carry plain files; links and devices are not
			// written to the scratch area.
			ctxlog.FromContext(ctx).Debug("Skipping non-regular archive entry.",
				"entry", hdr.Name, "type", hdr.Typeflag)
		}
	}
}

// entryPath joins an entry's relative name onto targetDir, rejecting names
// that would escape it.
func entryPath(targetDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("entry %q escapes the target directory", name)
	}
	return filepath.Join(targetDir, cleaned), nil
}

func writeEntry(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
