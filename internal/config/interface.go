package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given files or directories and
	// translates it into the format-agnostic model. Later paths override
	// earlier ones.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Converter is the bridge between module exports held as Go values and the
// cty values a configuration-language module computes with.
type Converter interface {
	// ToCtyValue converts an exported Go value (including script objects
	// that know how to export themselves) into a cty.Value.
	ToCtyValue(v any) (cty.Value, error)

	// FromCtyValue converts a cty.Value into plain Go data: maps, slices,
	// strings, float64 numbers and bools.
	FromCtyValue(v cty.Value) (any, error)
}
