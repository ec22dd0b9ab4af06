package jsrt

import (
	"context"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/engine"
	"github.com/vk/amdgo/internal/source"
)

func newTestRuntime(t *testing.T, sources map[string]string) (*engine.Runtime, *Runtime) {
	t.Helper()
	rt := engine.New(context.Background(), source.NewMemory(sources), engine.Options{})
	return rt, Attach(rt)
}

func load(t *testing.T, rt *engine.Runtime, ids ...string) []any {
	t.Helper()
	results, err := rt.Load(context.Background(), ids)
	require.NoError(t, err)
	return results
}

func export(v any) any {
	if obj, ok := v.(*goja.Object); ok {
		return obj.Export()
	}
	return v
}

func TestDefine_NamedModule(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./named.js": `define("named", [], function () { return { v: 1 }; });`,
	})

	// --- Act ---
	results := load(t, rt, "named")

	// --- Assert ---
	assert.Equal(t, map[string]any{"v": int64(1)}, export(results[0]))
}

func TestDefine_AnonymousModule(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./anon.js": `define(["dep"], function (dep) { return "anon+" + dep; });`,
		"./dep.js":  `define(function () { return "dep"; });`,
	})

	// --- Act ---
	results := load(t, rt, "anon")

	// --- Assert ---
	assert.Equal(t, []any{"anon+dep"}, results)
}

func TestDefine_CircularDependenciesShareLiveExports(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, map[string]string{
		"./a.js": `define(["exports", "b"], function (exports, b) {
			exports.name = "a";
			exports.partner = b.name;
		});`,
		"./b.js": `define(["exports", "a"], function (exports, a) {
			exports.name = "b";
			exports.seenEarly = a.name;
			exports.partnerName = function () { return a.name; };
		});`,
	})

	// --- Act ---
	load(t, rt, "a")
	got, err := js.Eval("check.js", `[require("a").partner, String(require("b").seenEarly), require("b").partnerName()].join(",")`)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "b,undefined,a", got)
}

func TestDefine_RelativeDependencies(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./lib/a.js":  `define(["./b", "../top"], function (b, top) { return [b, top].join("+"); });`,
		"./lib/b.js":  `define([], function () { return "b"; });`,
		"./top.js":    `define([], function () { return "top"; });`,
		"./unused.js": `throw new Error("must not be fetched");`,
	})

	// --- Act ---
	results := load(t, rt, "lib/a")

	// --- Assert ---
	assert.Equal(t, []any{"b+top"}, results)
}

func TestDefine_InlineExports(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./inline.js": `define({ answer: 42, nested: { ok: true } });`,
		"./str.js":    `define("str", "just a string");`,
	})

	// --- Act ---
	results := load(t, rt, "inline", "str")

	// --- Assert ---
	assert.Equal(t, map[string]any{"answer": int64(42), "nested": map[string]any{"ok": true}}, export(results[0]))
	assert.Equal(t, "just a string", results[1])
}

func TestDefine_NullAndUndefinedResults(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./nothing.js":  `define(["exports"], function (exports) { exports.kept = true; return null; });`,
		"./implicit.js": `define(["exports"], function (exports) { exports.kept = true; });`,
		"./literal.js":  `define(null);`,
	})

	// --- Act ---
	results := load(t, rt, "nothing", "implicit", "literal")

	// --- Assert ---
	assert.Nil(t, results[0], "returning null settles the module with null")
	assert.Equal(t, map[string]any{"kept": true}, export(results[1]), "returning undefined keeps the exports object")
	assert.Nil(t, results[2])
}

func TestDefine_EmptyDependenciesPassNoArguments(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./empty.js": `define([], function () { return arguments.length; });`,
	})

	// --- Act ---
	results := load(t, rt, "empty")

	// --- Assert ---
	assert.Equal(t, []any{int64(0)}, results)
}

func TestDefine_DefaultDependencies(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./pkg/cjs.js": `define(function (require, exports, module) {
			return [arguments.length, typeof require, typeof exports, typeof module, module.id, module.exports === exports].join(",");
		});`,
	})

	// --- Act ---
	results := load(t, rt, "pkg/cjs")

	// --- Assert ---
	assert.Equal(t, []any{"3,function,object,object,pkg/cjs,true"}, results)
}

func TestDefine_ModuleExportsReplacement(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, map[string]string{
		"./fn.js": `define(function (require, exports, module) {
			module.exports = function () { return 7; };
		});`,
	})

	// --- Act ---
	load(t, rt, "fn")
	got, err := js.Eval("call.js", `require("fn")()`)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestDefine_ModuleLocalRequire(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, map[string]string{
		"./app/main.js": `define(["require", "./util"], function (require, util) {
			var later = {};
			require(["./lazy"], function (lazy) { later.value = lazy; });
			return { util: require("./util"), later: later };
		});`,
		"./app/util.js": `define([], function () { return "util"; });`,
		"./app/lazy.js": `define([], function () { return "lazy"; });`,
	})

	// --- Act ---
	load(t, rt, "app/main")
	got, err := js.Eval("check.js", `var m = require("app/main"); m.util + "," + m.later.value`)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "util,lazy", got)
}

func TestGlobals_AMDMarkerAndAlias(t *testing.T) {
	_, js := newTestRuntime(t, nil)

	got, err := js.Eval("globals.js", `typeof define.amd + "," + (requirejs === require)`)

	require.NoError(t, err)
	assert.Equal(t, "object,true", got)
}

func TestRequire_ListFormFromScript(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, map[string]string{
		"./a.js": `define({ v: "A" });`,
	})
	_, err := js.Eval("entry.js", `
		var result = "unset";
		require(["a"], function (a) { result = a.v; });
		var syncAfterCall = result;
	`)
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, rt.Loop().Run(context.Background()))
	got, err := js.Eval("read.js", `syncAfterCall + "," + result`)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "unset,A", got)
}

func TestRequire_ErrorCallbackReceivesFailure(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, nil)
	_, err := js.Eval("entry.js", `
		var failure = "";
		require(["missing"], function () { failure = "unexpected success"; }, function (err) { failure = err.message; });
	`)
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, rt.Loop().Run(context.Background()))
	got, err := js.Eval("read.js", `failure`)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, got, "dependency 'missing' failed")
}

func TestRequire_SuccessCallbackThrowGoesToErrorCallback(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, map[string]string{
		"./a.js": `define({});`,
	})
	_, err := js.Eval("entry.js", `
		var caught = "";
		require(["a"], function () { throw new Error("in callback"); }, function (err) { caught = err.message; });
	`)
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, rt.Loop().Run(context.Background()))
	got, err := js.Eval("read.js", `caught`)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "in callback", got)
}

func TestRequire_SynchronousLookupOfUnloadedModuleThrows(t *testing.T) {
	_, js := newTestRuntime(t, nil)

	got, err := js.Eval("sync.js", `try { require("nope"); "no error"; } catch (e) { e.message; }`)

	require.NoError(t, err)
	assert.Equal(t, "module 'nope' has not been loaded", got)
}

func TestRequire_Config(t *testing.T) {
	// --- Arrange ---
	rt, js := newTestRuntime(t, map[string]string{
		"/srv/mods/x.mjs": `define(function () { return "x"; });`,
	})
	rt.RegisterEvaluator(".mjs", js)

	// --- Act ---
	_, err := js.Eval("cfg.js", `require.config({ baseUrl: "/srv/mods/", suffix: ".mjs" });`)
	require.NoError(t, err)
	results := load(t, rt, "x")

	// --- Assert ---
	assert.Equal(t, []any{"x"}, results)
	assert.Equal(t, "/srv/mods/", rt.Options().BasePath)
}

func TestDefine_AnonymousOutsideModuleThrows(t *testing.T) {
	_, js := newTestRuntime(t, nil)

	_, err := js.Eval("inline.js", `define(function () {});`)

	var ex *goja.Exception
	require.ErrorAs(t, err, &ex)
	assert.Contains(t, ex.Error(), engine.ErrAnonymousDefine.Error())
}

func TestDefine_FactoryThrowFailsModule(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./bad.js": `define([], function () { throw new Error("kaput"); });`,
	})

	// --- Act ---
	_, err := rt.Load(context.Background(), []string{"bad"})

	// --- Assert ---
	var factoryErr *engine.FactoryError
	require.ErrorAs(t, err, &factoryErr)
	assert.ErrorContains(t, err, "kaput")
}

func TestEvaluate_SyntaxErrorFailsModule(t *testing.T) {
	// --- Arrange ---
	rt, _ := newTestRuntime(t, map[string]string{
		"./syntax.js": `define([], function ( {`,
	})

	// --- Act ---
	_, err := rt.Load(context.Background(), []string{"syntax"})

	// --- Assert ---
	var evalErr *engine.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "./syntax.js", evalErr.Locator)
}
