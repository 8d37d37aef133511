// Package loader drives the workflow bundle pipeline end to end: stage the
// archive into a scratch directory, parse the extracted description, resolve
// linked binary payloads, and remove the scratch directory again on every
// exit path.
//
// Each Load call owns a uniquely named scratch directory under the
// configured parent, so concurrent loads are independent of each other. The
// directory's lifetime is bounded by the call: cleanup runs deferred,
// whether the pipeline succeeded or aborted mid-stage.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vk/flowpack/internal/archive"
	"github.com/vk/flowpack/internal/ctxlog"
	"github.com/vk/flowpack/internal/floatbin"
	"github.com/vk/flowpack/internal/fsutil"
	"github.com/vk/flowpack/internal/parser"
	"github.com/vk/flowpack/internal/workflow"
)

// DescriptionFileName is the fixed relative path of the description inside
// a bundle. Bundles produced by other exporters sometimes nest or rename
// it; see the discovery fallback in Load.
const DescriptionFileName = "workflow.yaml"

// Config adjusts how a Loader stages and cleans its scratch state. The zero
// value is fully usable.
type Config struct {
	// ScratchParent is the directory scratch directories are created
	// under. Empty means os.TempDir().
	ScratchParent string

	// Extract overrides archive staging. Nil means archive.Extract. Used
	// to inject stage failures in tests.
	Extract func(ctx context.Context, archivePath, targetDir string) error

	// RemoveAll overrides scratch removal. Nil means os.RemoveAll. Used to
	// inject cleanup failures in tests.
	RemoveAll func(path string) error
}

// Loader deserializes workflow bundles.
type Loader struct {
	cfg Config
}

// New returns a Loader with the config's unset fields defaulted.
func New(cfg Config) *Loader {
	if cfg.ScratchParent == "" {
		cfg.ScratchParent = os.TempDir()
	}
	if cfg.Extract == nil {
		cfg.Extract = archive.Extract
	}
	if cfg.RemoveAll == nil {
		cfg.RemoveAll = os.RemoveAll
	}
	return &Loader{cfg: cfg}
}

// Load runs the whole pipeline for the bundle at archivePath and returns
// the parsed description. On failure the returned error wraps exactly one
// of ErrArchiveExtraction, ErrWorkflowExtraction or ErrScratchRemoval; use
// StatusOf to classify. The scratch directory is removed before Load
// returns in every case.
func Load(ctx context.Context, archivePath string) (*workflow.Description, error) {
	return New(Config{}).Load(ctx, archivePath)
}

// Load implements the pipeline for one bundle. See the package-level Load.
func (l *Loader) Load(ctx context.Context, archivePath string) (desc *workflow.Description, err error) {
	scratch := filepath.Join(l.cfg.ScratchParent, "flowpack-"+uuid.NewString())
	ctx = ctxlog.With(ctx, "archive", archivePath, "scratch", scratch)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workflow bundle.")

	defer func() {
		if rmErr := l.cfg.RemoveAll(scratch); rmErr != nil {
			if err != nil {
				// The first failure wins; a cleanup failure must never
				// mask the root cause.
				logger.Warn("Scratch removal failed after an earlier error.", "error", rmErr)
				return
			}
			desc = nil
			err = fmt.Errorf("%w: %w", ErrScratchRemoval, rmErr)
			return
		}
		logger.Debug("Scratch directory removed.")
	}()

	if err := l.cfg.Extract(ctx, archivePath, scratch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveExtraction, err)
	}
	logger.Debug("Bundle staged.")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkflowExtraction, err)
	}

	descPath, err := l.findDescription(ctx, scratch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkflowExtraction, err)
	}

	desc, err = parser.ParseFile(ctx, descPath, func(name string) ([]float32, error) {
		return loadLinkedArray(scratch, name)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkflowExtraction, err)
	}

	logger.Debug("Workflow description built.", "units", len(desc.Units))
	return desc, nil
}

// findDescription locates the description file under the scratch root. The
// fixed name is tried first; otherwise the lexicographically first YAML
// file anywhere in the staged tree is used.
func (l *Loader) findDescription(ctx context.Context, scratch string) (string, error) {
	fixed := filepath.Join(scratch, DescriptionFileName)
	if _, err := os.Stat(fixed); err == nil {
		return fixed, nil
	}

	candidates, err := fsutil.FindFilesByExtensions(scratch, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("failed to scan staged bundle: %w", err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("bundle contains no %s and no other YAML description", DescriptionFileName)
	}
	ctxlog.FromContext(ctx).Debug("Description not at its fixed path, using discovered file.",
		"path", candidates[0])
	return candidates[0], nil
}

// loadLinkedArray resolves a link property's file name against the scratch
// root and decodes the payload. Names escaping the scratch tree are
// rejected for the same reason archive entries are.
func loadLinkedArray(scratch, name string) ([]float32, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || !filepath.IsLocal(cleaned) {
		return nil, fmt.Errorf("linked payload %q escapes the bundle", name)
	}
	return floatbin.ReadFile(filepath.Join(scratch, cleaned))
}
