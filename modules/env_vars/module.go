// Package env_vars provides the "env" native module exposing the process
// environment.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/amdgo/internal/registry"
)

// ModuleID is the id scripts import the module by.
const ModuleID = "env"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Environ overrides os.Environ, mostly for tests.
	Environ func() []string
}

// Register registers the native module with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNative(&registry.Native{
		ID:          ModuleID,
		Description: "Process environment: vars and get(name, fallback?)",
		New: func(ctx context.Context, _ ...any) (any, error) {
			environ := m.Environ
			if environ == nil {
				environ = os.Environ
			}
			vars := parseEnviron(environ())
			return map[string]any{
				"vars": vars,
				"get": func(name string, fallback ...string) string {
					if v, ok := vars[name]; ok {
						return v
					}
					if len(fallback) > 0 {
						return fallback[0]
					}
					return ""
				},
			}, nil
		},
	})
}

func parseEnviron(environ []string) map[string]string {
	envMap := make(map[string]string)
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}
