package app

import (
	"io"
	"log/slog"

	"github.com/vk/flowpack/internal/loader"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader *loader.Loader
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Structured logs go
// to logW; the workflow structure report goes to outW.
func NewApp(outW, logW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: config,
		loader: loader.New(loader.Config{ScratchParent: config.ScratchDir}),
	}
}
