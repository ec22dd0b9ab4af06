package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/record"
)

// Exports decodes the JSON exports the app printed, keyed by module id.
func Exports(t *testing.T, result *HarnessResult) map[string]any {
	t.Helper()
	require.NoError(t, result.Err, "run failed; logs:\n%s", result.LogOutput)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Output), &out), "output was: %q", result.Output)
	return out
}

// AssertExports checks the printed exports of a single module.
func AssertExports(t *testing.T, result *HarnessResult, id string, want any) {
	t.Helper()
	out := Exports(t, result)
	require.Contains(t, out, id)
	require.Equal(t, want, out[id])
}

// AssertModuleState checks the final lifecycle state of a module record.
func AssertModuleState(t *testing.T, result *HarnessResult, id string, want record.State) {
	t.Helper()
	require.NotNil(t, result.App, "app was not created: %v", result.Err)

	got, ok := result.App.States()[id]
	require.True(t, ok, "module '%s' has no record", id)
	require.Equal(t, want, got, "unexpected state for module '%s'", id)
}

// AssertNoRecord checks that a module was never requested.
func AssertNoRecord(t *testing.T, result *HarnessResult, id string) {
	t.Helper()
	require.NotNil(t, result.App)
	_, ok := result.App.States()[id]
	require.False(t, ok, "module '%s' should not have been requested", id)
}
