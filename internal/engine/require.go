package engine

import (
	"context"

	"github.com/vk/amdgo/internal/moduleid"
	"github.com/vk/amdgo/internal/record"
)

// Require looks up a Ready module synchronously.
func (rt *Runtime) Require(id string) (any, error) {
	cur, ok := rt.store.Get(id)
	if !ok {
		return nil, &NotReadyError{ID: id}
	}
	ready, isReady := cur.(record.Ready)
	if !isReady {
		return nil, &NotReadyError{ID: id, State: cur.State().String()}
	}
	return ready.Exports, nil
}

// RequireAll starts a new load operation for ids. Relative ids are taken
// against the root. Exactly one of the callbacks runs, in a later turn.
func (rt *Runtime) RequireAll(ids []string, onSuccess Success, onError Failure) {
	op := rt.newOpID()
	rt.logger.Debug("Starting load operation.", "op", op, "ids", ids)
	rt.requestAll("", ids, op, onSuccess, onError)
}

// Load requests ids and runs the loop until it goes idle. It must not be
// called while the loop is already running.
func (rt *Runtime) Load(ctx context.Context, ids []string) ([]any, error) {
	var (
		result  []any
		loadErr error
		done    bool
	)
	rt.loop.Submit(func() {
		rt.RequireAll(ids,
			func(args ...any) {
				result, done = args, true
			},
			func(err error) {
				loadErr, done = err, true
			},
		)
	})

	if err := rt.loop.Run(ctx); err != nil {
		return nil, err
	}
	if !done {
		return nil, &IncompleteLoadError{IDs: ids, Unresolved: rt.unresolved()}
	}
	if loadErr != nil {
		return nil, loadErr
	}
	rt.logger.Info("Modules loaded.", "ids", ids)
	return result, nil
}

// Require is the `require` pseudo-dependency handed to a module factory. It
// resolves relative ids against its module and nests list requests in the
// module's load operation.
type Require struct {
	rt   *Runtime
	base string
	op   record.OpID
}

// Base returns the id of the module this require belongs to.
func (r *Require) Base() string { return r.base }

// Runtime returns the runtime the require belongs to.
func (r *Require) Runtime() *Runtime { return r.rt }

// Get looks up a Ready module synchronously.
func (r *Require) Get(id string) (any, error) {
	resolved, err := moduleid.Resolve(r.base, id)
	if err != nil {
		return nil, err
	}
	return r.rt.Require(resolved)
}

// All requests ids under the owning module's load operation.
func (r *Require) All(ids []string, onSuccess Success, onError Failure) {
	r.rt.requestAll(r.base, ids, r.op, onSuccess, onError)
}
