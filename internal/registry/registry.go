package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Native describes a module implemented in Go.
type Native struct {
	// ID is the canonical module id scripts import.
	ID string
	// Description is shown by the CLI's module listing.
	Description string
	// Deps are the module ids whose exports New receives, in order.
	Deps []string
	// New builds the exports of the module.
	New func(ctx context.Context, deps ...any) (any, error)
}

// Registry holds the native modules of a single application instance.
type Registry struct {
	natives map[string]*Native
	order   []string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{natives: make(map[string]*Native)}
}

// RegisterNative registers a native module. Registering an id twice panics.
func (r *Registry) RegisterNative(n *Native) {
	if _, exists := r.natives[n.ID]; exists {
		panic(fmt.Sprintf("native module with id '%s' already registered", n.ID))
	}
	slog.Debug("Registering native module.", "id", n.ID)
	r.natives[n.ID] = n
	r.order = append(r.order, n.ID)
}

// Native returns the native registered under id.
func (r *Registry) Native(id string) (*Native, bool) {
	n, ok := r.natives[id]
	return n, ok
}

// Natives returns every native in registration order.
func (r *Registry) Natives() []*Native {
	out := make([]*Native, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.natives[id])
	}
	return out
}
