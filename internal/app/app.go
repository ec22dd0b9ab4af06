package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/amdgo/internal/config"
	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/eventloop"
	"github.com/vk/amdgo/internal/inmemorystore"
	"github.com/vk/amdgo/internal/metrics"
	"github.com/vk/amdgo/internal/record"
	"github.com/vk/amdgo/internal/recordstore"
	"github.com/vk/amdgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	appConfig  *Config
	config     *config.Model
	registry   *registry.Registry
	loop       *eventloop.Loop
	store      recordstore.Store
	metrics    *metrics.Collector
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules given the core native modules are registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logW := appConfig.LogWriter
	if logW == nil {
		logW = outW
	}
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	applyOverrides(cfgModel, appConfig)
	logger.Debug("Configuration loaded and translated into unified model.")

	loop := eventloop.New()

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(loop, outW)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:      outW,
		logger:    logger,
		appConfig: appConfig,
		config:    cfgModel,
		registry:  reg,
		loop:      loop,
		store:     inmemorystore.New(),
		metrics:   metrics.NewCollector("amd"),
	}
}

// applyOverrides lets command-line values win over configuration files.
func applyOverrides(m *config.Model, c *Config) {
	if c.BasePath != "" {
		m.Runtime.BasePath = c.BasePath
	}
	if c.Suffix != "" {
		m.Runtime.Suffix = c.Suffix
	}
	if c.Root != "" {
		m.Runtime.Root = c.Root
	}
	if c.FetchTimeout > 0 {
		m.Runtime.FetchTimeout = c.FetchTimeout
	}
	if c.Lenient {
		strict := false
		m.Runtime.Strict = &strict
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the merged configuration model.
func (a *App) Model() *config.Model {
	return a.config
}

// Metrics returns the application's metrics collector.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// States returns the current lifecycle state of every module record.
func (a *App) States() map[string]record.State {
	return a.store.Snapshot()
}
