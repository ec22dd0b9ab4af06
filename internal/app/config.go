package app

import (
	"errors"
	"io"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
// Non-zero runtime fields override the values from the configuration files.
type Config struct {
	ConfigPaths []string // hcl config files or directories
	ModuleIDs   []string // modules to load and print

	BasePath     string
	Suffix       string
	Root         string
	FetchTimeout time.Duration
	Lenient      bool

	LogFormat       string
	LogLevel        string
	LogWriter       io.Writer // defaults to the app's output writer
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ModuleIDs) == 0 {
		return nil, errors.New("at least one module id is required")
	}
	for _, id := range cfg.ModuleIDs {
		if id == "" {
			return nil, errors.New("module ids cannot be empty")
		}
	}
	if cfg.FetchTimeout < 0 {
		return nil, errors.New("fetch timeout cannot be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, errors.New("healthcheck port must be between 0 and 65535")
	}

	return &cfg, nil
}
