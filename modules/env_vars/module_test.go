package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/registry"
)

func TestEnvModule_Exports(t *testing.T) {
	// --- Arrange ---
	r := registry.New()
	(&Module{Environ: func() []string {
		return []string{"HOME=/home/u", "EMPTY=", "BROKEN", "EQ=a=b"}
	}}).Register(r)
	n, ok := r.Native(ModuleID)
	require.True(t, ok)

	// --- Act ---
	exports, err := n.New(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	m := exports.(map[string]any)
	require.Equal(t, map[string]string{"HOME": "/home/u", "EMPTY": "", "EQ": "a=b"}, m["vars"])

	get := m["get"].(func(string, ...string) string)
	require.Equal(t, "/home/u", get("HOME"))
	require.Equal(t, "", get("EMPTY", "x"))
	require.Equal(t, "fallback", get("MISSING", "fallback"))
	require.Equal(t, "", get("MISSING"))
}
