package registry

import (
	"context"
	"fmt"

	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/engine"
)

// Install declares every native in rt. Constructors run under ctx when the
// module is first required.
func (r *Registry) Install(ctx context.Context, rt *engine.Runtime) error {
	logger := ctxlog.FromContext(ctx)

	for _, n := range r.Natives() {
		deps := n.Deps
		if deps == nil {
			deps = []string{}
		}
		factory := func(args ...any) (any, error) {
			logger.Debug("Constructing native module.", "id", n.ID)
			return n.New(ctx, args...)
		}
		if err := rt.Define(n.ID, deps, factory); err != nil {
			return fmt.Errorf("failed to install native module '%s': %w", n.ID, err)
		}
	}

	logger.Debug("Native modules installed.", "count", len(r.order))
	return nil
}
