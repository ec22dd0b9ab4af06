// Package http_client provides the "http" native module: a shared HTTP
// client with a blocking fetch and a callback-style get that runs the
// request off the event loop.
package http_client

import (
	"context"
	"time"

	"github.com/vk/amdgo/internal/eventloop"
	"github.com/vk/amdgo/internal/registry"
)

// ModuleID is the id scripts import the module by.
const ModuleID = "http"

// Module implements the registry.Module interface.
type Module struct {
	// Loop receives the continuations of asynchronous requests. Without it
	// get falls back to a blocking request.
	Loop *eventloop.Loop
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
}

// Register registers the native module with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNative(&registry.Native{
		ID:          ModuleID,
		Description: "HTTP requests: fetch(url, method?) and get(url, callback)",
		New: func(ctx context.Context, _ ...any) (any, error) {
			timeout := m.Timeout
			if timeout == 0 {
				timeout = 30 * time.Second
			}
			c := &client{ctx: ctx, http: newHTTPClient(timeout), loop: m.Loop}
			return c.exports(), nil
		},
	})
}
