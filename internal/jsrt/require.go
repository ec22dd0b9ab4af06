package jsrt

import (
	"github.com/dop251/goja"
	"github.com/vk/amdgo/internal/engine"
)

// requirer is the part of a require function that differs between the
// global one and the one handed to a module.
type requirer interface {
	Get(id string) (any, error)
	All(ids []string, onSuccess engine.Success, onError engine.Failure)
}

// rootRequire starts a new load operation per list request.
type rootRequire struct {
	rt *engine.Runtime
}

func (r rootRequire) Get(id string) (any, error) { return r.rt.Require(id) }

func (r rootRequire) All(ids []string, onSuccess engine.Success, onError engine.Failure) {
	r.rt.RequireAll(ids, onSuccess, onError)
}

// newRequire builds a require function:
//
//	require("id")                   // exports of a ready module, or throws
//	require(["a", "b"], ok, error)  // asynchronous, ok(a, b) or error(err)
//	require.config({baseUrl, suffix})
func (j *Runtime) newRequire(r requirer) *goja.Object {
	fn := j.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		first := call.Argument(0)
		if id, ok := first.Export().(string); ok {
			exports, err := r.Get(id)
			if err != nil {
				panic(j.vm.NewGoError(err))
			}
			return j.toJS(exports)
		}

		if !isArray(first) {
			panic(j.vm.NewTypeError("require: expected a module id or an array of module ids"))
		}
		var ids []string
		if err := j.vm.ExportTo(first, &ids); err != nil {
			panic(j.vm.NewTypeError("require: module ids must be strings: %v", err))
		}
		onSuccess, _ := goja.AssertFunction(call.Argument(1))
		onError, _ := goja.AssertFunction(call.Argument(2))

		r.All(ids, j.successCallback(onSuccess, onError), j.errorCallback(onError))
		return goja.Undefined()
	}).ToObject(j.vm)

	_ = fn.Set("config", j.config)
	return fn
}

func (j *Runtime) successCallback(onSuccess, onError goja.Callable) engine.Success {
	return func(args ...any) {
		if onSuccess == nil {
			return
		}
		jsArgs := make([]goja.Value, len(args))
		for i, a := range args {
			jsArgs[i] = j.toJS(a)
		}
		if _, err := onSuccess(goja.Undefined(), jsArgs...); err != nil {
			j.reportError(onError, err)
		}
	}
}

func (j *Runtime) errorCallback(onError goja.Callable) engine.Failure {
	return func(err error) {
		j.reportError(onError, err)
	}
}

// reportError hands err to a script error callback, or logs it when there
// is none.
func (j *Runtime) reportError(onError goja.Callable, err error) {
	if onError == nil {
		j.logger.Warn("Unhandled require error.", "error", err)
		return
	}
	var jsErr goja.Value
	if ex, ok := err.(*goja.Exception); ok {
		jsErr = ex.Value()
	} else {
		jsErr = j.vm.NewGoError(err)
	}
	if _, cbErr := onError(goja.Undefined(), jsErr); cbErr != nil {
		j.logger.Error("Require error callback threw.", "error", cbErr)
	}
}

// config implements require.config({baseUrl, suffix}).
func (j *Runtime) config(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return goja.Undefined()
	}
	obj := arg.ToObject(j.vm)
	j.engine.Configure(engine.Options{
		BasePath: stringProp(obj, "baseUrl"),
		Suffix:   stringProp(obj, "suffix"),
	})
	return goja.Undefined()
}

func stringProp(obj *goja.Object, name string) string {
	v := obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
