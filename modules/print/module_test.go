package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/registry"
)

func newExports(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	r := registry.New()
	(&Module{Out: out}).Register(r)
	n, ok := r.Native(ModuleID)
	require.True(t, ok)
	exports, err := n.New(context.Background())
	require.NoError(t, err)
	return exports.(map[string]any)
}

func TestPrint_Line(t *testing.T) {
	var out bytes.Buffer
	m := newExports(t, &out)

	m["line"].(func(...any))("a", 1, true)

	require.Equal(t, "a 1 true\n", out.String())
}

func TestPrint_Value(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: "(null)\n"},
		{name: "scalar", value: 42, want: "42\n"},
		{
			name:  "map sorted",
			value: map[string]any{"b": 2, "a": "x"},
			want:  "a = \"x\"\nb = \"2\"\n",
		},
		{
			name:  "string map",
			value: map[string]string{"k": "v"},
			want:  "k = \"v\"\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			m := newExports(t, &out)

			m["value"].(func(any))(tc.value)

			require.Equal(t, tc.want, out.String())
		})
	}
}
