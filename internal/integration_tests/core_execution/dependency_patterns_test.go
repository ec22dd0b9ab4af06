package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/record"
	"github.com/vk/amdgo/internal/registry"
	"github.com/vk/amdgo/internal/testutil"
)

// TestCoreExecution_LinearChain loads a -> b -> c and checks values flow back
// up the chain.
func TestCoreExecution_LinearChain(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"a.js": `define(["b"], function (b) { return "a(" + b + ")"; });`,
		"b.js": `define(["c"], function (c) { return "b(" + c + ")"; });`,
		"c.js": `define([], function () { return "c"; });`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{Files: files, IDs: []string{"a"}})

	// --- Assert ---
	testutil.AssertExports(t, result, "a", "a(b(c))")
	testutil.AssertModuleState(t, result, "c", record.StateReady)
}

// TestCoreExecution_DiamondSharesInstance checks that a module required by
// two siblings is constructed once. The shared module is preloaded: within a
// single load operation a sibling may observe it mid-initialization.
func TestCoreExecution_DiamondSharesInstance(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	shared := &testutil.SimpleModule{ID: "shared", Exports: map[string]any{"n": 1}}
	files := map[string]string{
		"config/amdgo.hcl": `preload = ["shared"]`,
		"top.js":           `define(["left", "right"], function (l, r) { return l === r; });`,
		"left.js":          `define(["shared"], function (s) { return s; });`,
		"right.js":         `define(["shared"], function (s) { return s; });`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files:   files,
		IDs:     []string{"top"},
		Modules: []registry.Module{shared},
	})

	// --- Assert ---
	testutil.AssertExports(t, result, "top", true)
	require.Equal(t, 1, shared.Calls())
}

// TestCoreExecution_CircularDependency checks that a cycle resolves and that
// the module entered second sees the live placeholder of the first.
func TestCoreExecution_CircularDependency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"a.js": `define(["b", "exports"], function (b, exports) {
			exports.name = "a";
			exports.peer = b.name;
		});`,
		"b.js": `define(["a", "exports"], function (a, exports) {
			exports.name = "b";
			exports.sawA = typeof a.name;
			exports.later = function () { return a.name; };
		});`,
		"check.js": `define(["a", "require"], function (a, require) {
			var b = require("b");
			return { peer: a.peer, sawA: b.sawA, later: b.later() };
		});`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{Files: files, IDs: []string{"check"}})

	// --- Assert ---
	testutil.AssertExports(t, result, "check", map[string]any{"peer": "b", "sawA": "undefined", "later": "a"})
	testutil.AssertModuleState(t, result, "a", record.StateReady)
	testutil.AssertModuleState(t, result, "b", record.StateReady)
}

// TestCoreExecution_RelativeIDs resolves ids against the requiring module,
// including the list form of a module-local require.
func TestCoreExecution_RelativeIDs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"app/main.js": `define(["./util/str", "../lib/x", "exports"], function (s, x, exports) {
			exports.value = s + x;
		});`,
		"app/util/str.js": `define(["require"], function (require) {
			require(["./pad"], function (pad) {});
			return "str";
		});`,
		"app/util/pad.js": `define({ pad: true });`,
		"lib/x.js":        `define(function () { return "-x"; });`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{Files: files, IDs: []string{"app/main"}})

	// --- Assert ---
	testutil.AssertExports(t, result, "app/main", map[string]any{"value": "str-x"})
	testutil.AssertModuleState(t, result, "app/util/pad", record.StateReady)
	testutil.AssertModuleState(t, result, "lib/x", record.StateReady)
}

// TestCoreExecution_SyncRequireOfUnloadedModuleFails checks that the string
// form of require never triggers a load.
func TestCoreExecution_SyncRequireOfUnloadedModuleFails(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.js":  `define(["require"], function (require) { return require("./other"); });`,
		"other.js": `define(1);`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{Files: files, IDs: []string{"main"}})

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "module 'other' has not been loaded")
	testutil.AssertNoRecord(t, result, "other")
	testutil.AssertModuleState(t, result, "main", record.StateFailed)
}

// TestCoreExecution_Idempotence loads the same id twice in one run.
func TestCoreExecution_Idempotence(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	counter := &testutil.SimpleModule{ID: "counter", Exports: "once"}
	files := map[string]string{
		"x.js": `define(["counter"], function (c) { return c; });`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files:   files,
		IDs:     []string{"x", "x"},
		Modules: []registry.Module{counter},
	})

	// --- Assert ---
	out := testutil.Exports(t, result)
	require.Equal(t, "once", out["x"])
	require.Equal(t, 1, counter.Calls())
}
