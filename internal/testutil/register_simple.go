package testutil

import (
	"context"
	"sync/atomic"

	"github.com/vk/amdgo/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock native module.
type SimpleModule struct {
	ID      string
	Deps    []string
	Exports any
	Err     error
	// Fn, when set, builds the exports from the dependency exports.
	Fn func(deps ...any) (any, error)

	calls atomic.Int32
}

// Calls reports how many times the module was constructed.
func (m *SimpleModule) Calls() int {
	return int(m.calls.Load())
}

// Register registers the native module.
func (m *SimpleModule) Register(r *registry.Registry) {
	r.RegisterNative(&registry.Native{
		ID:          m.ID,
		Description: "test module",
		Deps:        m.Deps,
		New: func(_ context.Context, deps ...any) (any, error) {
			m.calls.Add(1)
			if m.Fn != nil {
				return m.Fn(deps...)
			}
			return m.Exports, m.Err
		},
	})
}
