package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/moduleid"
)

// ValidateRegistry checks every native for a usable id, a constructor and
// dependencies that exist among the natives.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, n := range r.Natives() {
		switch {
		case n.ID == "":
			errs = append(errs, "native module with empty id")
			continue
		case moduleid.IsReserved(n.ID):
			errs = append(errs, fmt.Sprintf("native '%s': id is reserved", n.ID))
		case moduleid.IsRelative(n.ID):
			errs = append(errs, fmt.Sprintf("native '%s': id must not be relative", n.ID))
		}
		if n.New == nil {
			errs = append(errs, fmt.Sprintf("native '%s': no constructor", n.ID))
		}
		for _, dep := range n.Deps {
			if _, ok := r.natives[dep]; !ok && !moduleid.IsReserved(dep) {
				errs = append(errs, fmt.Sprintf("native '%s': depends on '%s' which is not a native module", n.ID, dep))
			}
		}
	}

	if len(errs) > 0 {
		logger.Debug("Registry validation failed.", "problems", len(errs))
		return errors.New("registry validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
