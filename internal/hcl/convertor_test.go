package hcl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type exportingValue struct{ v any }

func (e exportingValue) Export() any { return e.v }

type nativeStruct struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestConverter_ToCtyValue(t *testing.T) {
	c := NewConverter()
	testCases := []struct {
		name string
		in   any
		want cty.Value
	}{
		{name: "nil", in: nil, want: cty.NullVal(cty.DynamicPseudoType)},
		{name: "string", in: "x", want: cty.StringVal("x")},
		{name: "int64 from scripts", in: int64(7), want: cty.NumberIntVal(7)},
		{name: "float", in: 1.5, want: cty.NumberFloatVal(1.5)},
		{
			name: "generic map",
			in:   map[string]any{"a": true, "b": []any{"x"}},
			want: cty.ObjectVal(map[string]cty.Value{"a": cty.True, "b": cty.TupleVal([]cty.Value{cty.StringVal("x")})}),
		},
		{
			name: "typed string map",
			in:   map[string]string{"HOME": "/root"},
			want: cty.ObjectVal(map[string]cty.Value{"HOME": cty.StringVal("/root")}),
		},
		{
			name: "struct via json tags",
			in:   &nativeStruct{Name: "n", Count: 2},
			want: cty.ObjectVal(map[string]cty.Value{"name": cty.StringVal("n"), "count": cty.NumberFloatVal(2)}),
		},
		{
			name: "exporter",
			in:   exportingValue{v: map[string]any{"k": "v"}},
			want: cty.ObjectVal(map[string]cty.Value{"k": cty.StringVal("v")}),
		},
		{
			name: "function becomes null",
			in:   map[string]any{"fn": func() {}},
			want: cty.ObjectVal(map[string]cty.Value{"fn": cty.NullVal(cty.DynamicPseudoType)}),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.ToCtyValue(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.RawEquals(got), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestConverter_FromCtyValue(t *testing.T) {
	// --- Arrange ---
	c := NewConverter()
	in := cty.ObjectVal(map[string]cty.Value{
		"name":  cty.StringVal("svc"),
		"port":  cty.NumberIntVal(8080),
		"tags":  cty.SetVal([]cty.Value{cty.StringVal("a")}),
		"on":    cty.True,
		"unset": cty.NullVal(cty.String),
	})

	// --- Act ---
	got, err := c.FromCtyValue(in)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "svc",
		"port":  float64(8080),
		"tags":  []any{"a"},
		"on":    true,
		"unset": nil,
	}, got)
}

func TestConverter_UnsupportedMapKey(t *testing.T) {
	_, err := NewConverter().ToCtyValue(map[int]string{1: "x"})
	assert.ErrorContains(t, err, "unsupported map key type")
}

func TestConverter_CircularValue(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := map[string]any{"name": "a"}
	b := map[string]any{"name": "b", "a": a}
	a["b"] = b

	// --- Act ---
	_, err := NewConverter().ToCtyValue(a)

	// --- Assert ---
	require.ErrorIs(t, err, ErrCircular)
	assert.ErrorContains(t, err, "b: a:")
}

// TestConverter_SharedValueIsNotCircular verifies that a value reachable
// through two siblings converts twice.
func TestConverter_SharedValueIsNotCircular(t *testing.T) {
	t.Parallel()

	shared := map[string]any{"x": "y"}
	got, err := NewConverter().ToCtyValue(map[string]any{"left": shared, "right": []any{shared}})

	require.NoError(t, err)
	assert.Equal(t, "y", got.GetAttr("left").GetAttr("x").AsString())
	assert.Equal(t, "y", got.GetAttr("right").Index(cty.NumberIntVal(0)).GetAttr("x").AsString())
}
