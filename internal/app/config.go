package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// BundlePath is the workflow bundle archive to load.
	BundlePath string
	// ScratchDir is the parent directory for per-load scratch directories.
	// Empty means the system temp directory.
	ScratchDir string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BundlePath == "" {
		return nil, errors.New("BundlePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
