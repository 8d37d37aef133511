package app

import (
	"context"
	"fmt"

	"github.com/vk/flowpack/internal/ctxlog"
	"github.com/vk/flowpack/internal/loader"
)

// Run executes the main application logic: load the configured bundle and
// print the resulting workflow structure.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	desc, err := a.loader.Load(ctx, a.config.BundlePath)
	if err != nil {
		a.logger.Error("Bundle load failed.",
			"bundle", a.config.BundlePath, "status", loader.StatusOf(err).String())
		return fmt.Errorf("failed to load workflow bundle: %w", err)
	}

	a.logger.Info("Workflow bundle loaded.",
		"bundle", a.config.BundlePath, "units", len(desc.Units))
	fmt.Fprint(a.outW, desc.Structure())

	a.logger.Debug("App.Run method finished.")
	return nil
}
