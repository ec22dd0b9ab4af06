package engine

import (
	"fmt"
	"runtime/debug"

	"github.com/vk/amdgo/internal/moduleid"
	"github.com/vk/amdgo/internal/record"
)

// Factory builds the exports of a module from the exports of its
// dependencies. A nil result means the module's exports placeholder, as
// left by the factory, is the final value. Return Null to settle the module
// with nil exports.
type Factory func(args ...any) (any, error)

type null struct{}

// Null is the factory result for exports that are explicitly nil.
var Null any = null{}

// Constant returns a factory that always yields v.
func Constant(v any) Factory {
	return func(...any) (any, error) { return v, nil }
}

// DefaultDeps are the dependencies of a define that lists none.
var DefaultDeps = []string{moduleid.Require, moduleid.Exports, moduleid.Module}

// Define registers the initializer of id. An empty id names the source unit
// currently being evaluated. A nil deps means DefaultDeps; a non-nil empty
// slice means the factory takes no arguments.
//
// Defining an id that is already declared, initializing or settled is
// rejected with a *ProtocolViolationError. Defining an id whose source is
// in flight starts its initialization at once under the operation that
// requested it.
func (rt *Runtime) Define(id string, deps []string, factory Factory) error {
	if id == "" {
		unit, ok := rt.CurrentUnit()
		if !ok {
			return ErrAnonymousDefine
		}
		id = unit.ID
	}
	if deps == nil {
		deps = DefaultDeps
	}
	if factory == nil {
		factory = Constant(nil)
	}

	existing, exists := rt.store.Get(id)
	var prior record.Loading
	if exists {
		loading, ok := existing.(record.Loading)
		if !ok {
			return &ProtocolViolationError{ID: id, Reason: "module defined twice (current state: " + existing.State().String() + ")"}
		}
		prior = loading
	}

	deps = append([]string(nil), deps...)
	rt.set(id, record.Declared{
		Deps:      deps,
		Callbacks: prior.Callbacks,
		Init:      func(op record.OpID) { rt.initialize(id, deps, factory, op) },
	})

	if exists {
		rt.initialize(id, deps, factory, prior.Op)
	}
	return nil
}

// Provide registers a module whose exports are already known. Like any
// other module it is only initialized once something requests it.
func (rt *Runtime) Provide(id string, exports any) error {
	return rt.Define(id, []string{}, Constant(exports))
}

// initialize moves a Declared module to Pending, resolves its dependencies
// and settles it with the factory result.
func (rt *Runtime) initialize(id string, deps []string, factory Factory, op record.OpID) {
	cur, ok := rt.store.Get(id)
	declared, isDeclared := cur.(record.Declared)
	if !ok || !isDeclared {
		rt.violation(id, "initializing a module that is not declared")
		return
	}

	module := &record.CommonJS{ID: id, Exports: rt.newExports()}
	rt.set(id, record.Pending{Op: op, Callbacks: declared.Callbacks, Module: module})

	rt.requestAll(id, deps, op,
		func(args ...any) {
			exports, err := callFactory(factory, args)
			if err != nil {
				rt.resolve(id, record.Failed{Err: &FactoryError{ID: id, Err: err}})
				return
			}
			switch exports {
			case nil:
				exports = module.Exports
			case Null:
				exports = nil
			}
			rt.resolve(id, record.Ready{Exports: exports})
		},
		func(err error) {
			rt.resolve(id, record.Failed{Err: err})
		},
	)
}

// FactoryPanic is the error a recovered factory panic is reported as.
type FactoryPanic struct {
	Value any
	Stack []byte
}

func (p *FactoryPanic) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

func callFactory(factory Factory, args []any) (exports any, err error) {
	defer func() {
		if r := recover(); r != nil {
			exports = nil
			err = &FactoryPanic{Value: r, Stack: debug.Stack()}
		}
	}()
	return factory(args...)
}
