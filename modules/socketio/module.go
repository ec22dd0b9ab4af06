// Package socketio provides the "socketio" native module: scripts open
// socket.io connections and exchange events with a server.
package socketio

import (
	"context"
	"time"

	"github.com/vk/amdgo/internal/eventloop"
	"github.com/vk/amdgo/internal/registry"
	"github.com/vk/amdgo/internal/source"
)

// ModuleID is the id scripts import the module by.
const ModuleID = "socketio"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Loop receives the continuations of connects and requests. Without it
	// they block and call back synchronously.
	Loop *eventloop.Loop
	// InsecureSkipVerify disables TLS verification for every connection.
	InsecureSkipVerify bool
}

// ConnectCallback receives an error message (empty on success) and the
// connected client.
type ConnectCallback func(errMsg string, client map[string]any)

type connector struct {
	ctx                context.Context
	loop               *eventloop.Loop
	insecureSkipVerify bool
}

// Register registers the native module with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNative(&registry.Native{
		ID:          ModuleID,
		Description: "Socket.IO client: connect(url, namespace, callback)",
		New: func(ctx context.Context, _ ...any) (any, error) {
			c := &connector{ctx: ctx, loop: m.Loop, insecureSkipVerify: m.InsecureSkipVerify}
			return map[string]any{"connect": c.connect}, nil
		},
	})
}

func (c *connector) connect(url, namespace string, cb ConnectCallback) {
	dial := func(ctx context.Context) func() {
		io, err := source.DialSocketIO(ctx, url, namespace, c.insecureSkipVerify)
		if err != nil {
			return func() { cb(err.Error(), nil) }
		}
		cl := &client{ctx: c.ctx, io: io, loop: c.loop, defaultTimeout: 10 * time.Second}
		return func() { cb("", cl.exports()) }
	}

	if c.loop == nil {
		dial(c.ctx)()
		return
	}
	c.loop.Go(c.ctx, dial)
}
