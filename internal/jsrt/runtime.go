package jsrt

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dop251/goja"
	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/engine"
	"github.com/vk/amdgo/internal/record"
)

// Extension is the source extension handled by this package.
const Extension = ".js"

// Runtime is a goja VM bound to one engine.Runtime.
type Runtime struct {
	vm     *goja.Runtime
	engine *engine.Runtime
	logger *slog.Logger
}

// Attach creates a VM for rt, installs the globals and registers the VM as
// the evaluator of .js sources. Module placeholders of rt become JavaScript
// objects.
func Attach(rt *engine.Runtime) *Runtime {
	j := &Runtime{
		vm:     goja.New(),
		engine: rt,
		logger: ctxlog.FromContext(rt.Context()).With("component", "jsrt"),
	}
	j.installGlobals()
	rt.SetExportsFactory(func() any { return j.vm.NewObject() })
	rt.RegisterEvaluator(Extension, j)
	return j
}

// VM returns the underlying goja runtime.
func (j *Runtime) VM() *goja.Runtime { return j.vm }

// Evaluate implements engine.Evaluator.
func (j *Runtime) Evaluate(_ context.Context, unit engine.Unit, src []byte) error {
	j.logger.Debug("Evaluating script.", "module", unit.ID, "locator", unit.Locator)
	if _, err := j.vm.RunScript(unit.Locator, string(src)); err != nil {
		return err
	}
	return nil
}

// Eval runs an inline script outside of any module and returns its
// completion value converted to Go. It must run on the loop goroutine or
// while the loop is stopped.
func (j *Runtime) Eval(name, src string) (any, error) {
	v, err := j.vm.RunScript(name, src)
	if err != nil {
		return nil, err
	}
	return j.fromJS(v), nil
}

func (j *Runtime) installGlobals() {
	define := j.vm.ToValue(j.define).ToObject(j.vm)
	_ = define.Set("amd", j.vm.NewObject())
	require := j.newRequire(rootRequire{rt: j.engine})

	_ = j.vm.Set("define", define)
	_ = j.vm.Set("require", require)
	_ = j.vm.Set("requirejs", require)
	_ = j.vm.Set("console", j.newConsole())
}

// define implements define(id?, deps?, factory).
func (j *Runtime) define(call goja.FunctionCall) goja.Value {
	args := call.Arguments

	id := ""
	if len(args) > 0 {
		if s, ok := args[0].Export().(string); ok {
			if s == "" {
				panic(j.vm.NewTypeError("define: module id must not be empty"))
			}
			id, args = s, args[1:]
		}
	}

	var deps []string
	if len(args) > 0 && isArray(args[0]) {
		deps = []string{}
		if err := j.vm.ExportTo(args[0], &deps); err != nil {
			panic(j.vm.NewTypeError("define: dependencies must be module ids: %v", err))
		}
		args = args[1:]
	}

	factory := goja.Undefined()
	if len(args) > 0 {
		factory = args[0]
	}

	if err := j.engine.Define(id, deps, j.factory(factory)); err != nil {
		panic(j.vm.NewGoError(err))
	}
	return goja.Undefined()
}

// factory adapts a JavaScript factory. Non-function values are constant
// exports. Undefined keeps the exports placeholder; null is a value.
func (j *Runtime) factory(v goja.Value) engine.Factory {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		if goja.IsNull(v) {
			return engine.Constant(engine.Null)
		}
		return engine.Constant(j.fromJS(v))
	}
	return func(args ...any) (any, error) {
		jsArgs := make([]goja.Value, len(args))
		for i, a := range args {
			jsArgs[i] = j.toJS(a)
		}
		res, err := fn(goja.Undefined(), jsArgs...)
		if err != nil {
			return nil, err
		}
		if goja.IsNull(res) {
			return engine.Null, nil
		}
		return j.fromJS(res), nil
	}
}

// toJS converts a Go value for a script.
func (j *Runtime) toJS(v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return x
	case *engine.Require:
		return j.newRequire(x)
	case *record.CommonJS:
		return j.vm.NewDynamicObject(&moduleObject{j: j, cjs: x})
	default:
		return j.vm.ToValue(x)
	}
}

// fromJS converts a script value for Go. Objects keep their identity.
func (j *Runtime) fromJS(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok {
		return obj
	}
	return v.Export()
}

func isArray(v goja.Value) bool {
	obj, ok := v.(*goja.Object)
	return ok && obj.ClassName() == "Array"
}

// moduleObject is the `module` pseudo-dependency seen from a script.
type moduleObject struct {
	j   *Runtime
	cjs *record.CommonJS
}

func (m *moduleObject) Get(key string) goja.Value {
	switch key {
	case "id":
		return m.j.vm.ToValue(m.cjs.ID)
	case "exports":
		return m.j.toJS(m.cjs.Exports)
	default:
		return nil
	}
}

func (m *moduleObject) Set(key string, val goja.Value) bool {
	if key != "exports" {
		return false
	}
	m.cjs.Exports = m.j.fromJS(val)
	return true
}

func (m *moduleObject) Has(key string) bool { return key == "id" || key == "exports" }
func (m *moduleObject) Delete(string) bool  { return false }
func (m *moduleObject) Keys() []string      { return []string{"id", "exports"} }

func (j *Runtime) newConsole() *goja.Object {
	console := j.vm.NewObject()
	logAt := func(level slog.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, a := range call.Arguments {
				parts[i] = a.String()
			}
			j.logger.Log(context.Background(), level, strings.Join(parts, " "), "source", "console")
			return goja.Undefined()
		}
	}
	_ = console.Set("log", logAt(slog.LevelInfo))
	_ = console.Set("info", logAt(slog.LevelInfo))
	_ = console.Set("debug", logAt(slog.LevelDebug))
	_ = console.Set("warn", logAt(slog.LevelWarn))
	_ = console.Set("error", logAt(slog.LevelError))
	return console
}
