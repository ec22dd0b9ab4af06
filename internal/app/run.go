package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/engine"
	"github.com/vk/amdgo/internal/hcl"
	"github.com/vk/amdgo/internal/jsrt"
	"github.com/vk/amdgo/internal/source"
)

// Run loads the preload list and then the requested modules, and writes the
// exports of the requested modules to the output as one JSON object keyed
// by module id. An App runs once.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.appConfig.HealthcheckPort)
		defer a.closeHealthcheckServer()
	}

	fetcher, closeFetcher := a.newFetcher()
	defer closeFetcher()

	rt := a.newRuntime(ctx, fetcher)

	if err := a.registry.Install(ctx, rt); err != nil {
		return err
	}
	a.logger.Info("Native modules installed.", "count", len(a.registry.Natives()))

	if len(a.config.Preload) > 0 {
		a.logger.Info("Preloading modules.", "ids", a.config.Preload)
		if _, err := rt.Load(ctx, a.config.Preload); err != nil {
			return fmt.Errorf("preload failed: %w", err)
		}
	}

	a.logger.Info("🚀 Loading modules...", "ids", a.appConfig.ModuleIDs)
	exports, err := rt.Load(ctx, a.appConfig.ModuleIDs)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	a.logger.Info("🏁 Load finished.")

	if err := a.writeExports(exports); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) newRuntime(ctx context.Context, fetcher source.Fetcher) *engine.Runtime {
	strict := a.config.Runtime.Strict == nil || *a.config.Runtime.Strict
	rt := engine.New(ctx, fetcher, engine.Options{
		BasePath:     a.config.Runtime.BasePath,
		Suffix:       a.config.Runtime.Suffix,
		FetchTimeout: a.config.Runtime.FetchTimeout,
		OnFetch:      a.onFetch,
		Lenient:      !strict,
	},
		engine.WithLoop(a.loop),
		engine.WithStore(a.store),
		engine.WithObserver(a.metrics),
	)
	js := jsrt.Attach(rt)
	hcl.AttachModules(rt)
	// A custom suffix names JavaScript sources.
	if suffix := rt.Options().Suffix; !slices.Contains(rt.Extensions(), suffix) {
		rt.RegisterEvaluator(suffix, js)
	}
	return rt
}
