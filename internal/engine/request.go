package engine

import (
	"context"
	"time"

	"github.com/vk/amdgo/internal/moduleid"
	"github.com/vk/amdgo/internal/record"
	"github.com/vk/amdgo/internal/source"
)

// Success receives the exports of the requested modules in request order.
type Success func(args ...any)

// Failure receives the first failed dependency, or a resolution error.
type Failure func(err error)

// request registers cb to run once id reaches a usable state under op.
func (rt *Runtime) request(id string, op record.OpID, cb record.Callback) {
	cur, ok := rt.store.Get(id)
	if !ok {
		rt.startFetch(id, op, cb)
		return
	}

	switch v := cur.(type) {
	case record.Ready, record.Failed:
		rt.loop.Defer(func() { cb(id, v) })
	case record.Loading:
		v.Callbacks = record.Append(v.Callbacks, cb)
		rt.store.Set(id, v)
	case record.Declared:
		v.Callbacks = record.Append(v.Callbacks, cb)
		rt.store.Set(id, v)
		v.Init(op)
	case record.Pending:
		if v.Op == op {
			// The chain came back to a module it is still initializing.
			rt.logger.Debug("Circular dependency, handing out partial exports.", "module", id, "op", op)
			rt.loop.Defer(func() {
				latest, _ := rt.store.Get(id)
				cb(id, latest)
			})
			return
		}
		v.Callbacks = record.Append(v.Callbacks, cb)
		rt.store.Set(id, v)
	}
}

// requestAll resolves ids relative to baseID, requests each of them under op
// and, once every one of them is usable, calls onSuccess with their exports
// in input order. It never calls either callback in the current turn.
func (rt *Runtime) requestAll(baseID string, ids []string, op record.OpID, onSuccess Success, onError Failure) {
	if onSuccess == nil {
		onSuccess = func(...any) {}
	}
	if onError == nil {
		onError = func(err error) {
			rt.logger.Warn("Unhandled require failure.", "base", baseID, "error", err)
		}
	}

	depIDs, err := moduleid.ResolveAll(baseID, ids)
	if err != nil {
		rt.loop.Defer(func() { onError(err) })
		return
	}

	remaining := 1
	for _, id := range depIDs {
		if !moduleid.IsReserved(id) {
			remaining++
		}
	}

	settled := false
	complete := func() {
		args := make([]any, len(depIDs))
		var cjs *record.CommonJS
		for i, id := range depIDs {
			if moduleid.IsReserved(id) {
				if cjs == nil {
					cjs = rt.commonJS(baseID)
				}
				args[i] = rt.pseudoDependency(id, baseID, op, cjs)
				continue
			}
			cur, ok := rt.store.Get(id)
			if !ok {
				onError(rt.violation(id, "requested module vanished from the registry"))
				return
			}
			switch v := cur.(type) {
			case record.Failed:
				onError(&DependencyError{ID: id, Err: v.Err})
				return
			case record.Ready, record.Pending:
				args[i], _ = record.Exports(v)
			default:
				onError(rt.violation(id, "unexpected state when collecting dependencies: "+cur.State().String()))
				return
			}
		}
		onSuccess(args...)
	}

	ready := func(string, record.Record) {
		remaining--
		if remaining == 0 && !settled {
			settled = true
			complete()
		}
	}

	for _, id := range depIDs {
		if !moduleid.IsReserved(id) {
			rt.request(id, op, ready)
		}
	}

	// The extra count guards against completing before every request above
	// was issued. Reaching zero here means nothing had to be waited on.
	remaining--
	if remaining == 0 {
		settled = true
		rt.loop.Defer(complete)
	}
}

// commonJS returns the exports placeholder the exports and module
// pseudo-dependencies of baseID refer to.
func (rt *Runtime) commonJS(baseID string) *record.CommonJS {
	if baseID == "" {
		return &record.CommonJS{Exports: rt.newExports()}
	}
	cur, ok := rt.store.Get(baseID)
	if !ok {
		return &record.CommonJS{ID: baseID, Exports: rt.newExports()}
	}
	switch v := cur.(type) {
	case record.Pending:
		return v.Module
	case record.Ready:
		return &record.CommonJS{ID: baseID, Exports: v.Exports}
	case record.Failed:
		return &record.CommonJS{ID: baseID, Exports: rt.newExports()}
	default:
		rt.violation(baseID, "pseudo-dependencies requested while "+cur.State().String())
		return &record.CommonJS{ID: baseID, Exports: rt.newExports()}
	}
}

func (rt *Runtime) pseudoDependency(id, baseID string, op record.OpID, cjs *record.CommonJS) any {
	switch id {
	case moduleid.Require:
		return &Require{rt: rt, base: baseID, op: op}
	case moduleid.Exports:
		return cjs.Exports
	default:
		return cjs
	}
}

// startFetch registers id as Loading with cb as its first waiter and starts
// fetching its source.
func (rt *Runtime) startFetch(id string, op record.OpID, cb record.Callback) {
	locator := moduleid.Locator(id, rt.opts.BasePath, rt.opts.Suffix, rt.Extensions())
	req := source.NewRequest(id, locator)
	rt.set(id, record.Loading{Op: op, Locator: locator, Callbacks: []record.Callback{cb}})

	if rt.opts.OnFetch != nil {
		rt.opts.OnFetch(req)
	}
	if req.Reject != nil {
		rt.logger.Debug("Fetch rejected by hook.", "module", id, "locator", locator, "error", req.Reject)
		rt.loop.Defer(func() {
			rt.fail(id, &FetchError{ID: id, Locator: locator, Err: req.Reject})
		})
		return
	}

	rt.logger.Debug("Fetching module source.", "module", id, "locator", req.Locator)
	timeout := rt.opts.FetchTimeout
	rt.loop.Go(rt.ctx, func(ctx context.Context) func() {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		data, err := rt.fetcher.Fetch(ctx, req)
		elapsed := time.Since(start)
		return func() { rt.completeFetch(req, data, err, elapsed) }
	})
}

// completeFetch evaluates a fetched source on the loop goroutine.
func (rt *Runtime) completeFetch(req *source.Request, data []byte, err error, elapsed time.Duration) {
	id := req.ID
	if rt.observer != nil {
		rt.observer.Fetched(id, elapsed, err)
	}
	if err != nil {
		rt.fail(id, &FetchError{ID: id, Locator: req.Locator, Err: err})
		return
	}

	ev, ext := rt.evaluatorFor(req.Locator)
	if ev == nil {
		rt.fail(id, &EvaluationError{ID: id, Locator: req.Locator, Err: errNoEvaluator(ext)})
		return
	}

	unit := Unit{ID: id, Locator: req.Locator}
	rt.units = append(rt.units, unit)
	evalErr := ev.Evaluate(rt.ctx, unit, data)
	rt.units = rt.units[:len(rt.units)-1]

	if evalErr != nil {
		rt.fail(id, &EvaluationError{ID: id, Locator: req.Locator, Err: evalErr})
		return
	}
	if cur, ok := rt.store.Get(id); ok && cur.State() == record.StateLoading {
		rt.fail(id, &UndefinedModuleError{ID: id, Locator: req.Locator})
	}
}

// fail resolves id as Failed if it is still waiting for its source. A module
// that got defined meanwhile, e.g. by a bundle, keeps its own lifecycle.
func (rt *Runtime) fail(id string, err error) {
	if cur, ok := rt.store.Get(id); ok && cur.State() != record.StateLoading {
		rt.logger.Warn("Source failure after module was defined.", "module", id, "state", cur.State().String(), "error", err)
		return
	}
	rt.resolve(id, record.Failed{Err: err})
}
