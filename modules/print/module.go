// Package print provides the "print" native module that writes values to the
// application's output.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/vk/amdgo/internal/registry"
)

// ModuleID is the id scripts import the module by.
const ModuleID = "print"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed text. Defaults to os.Stdout.
	Out io.Writer
}

type printer struct {
	mu  sync.Mutex
	out io.Writer
}

// Register registers the native module with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNative(&registry.Native{
		ID:          ModuleID,
		Description: "Output: line(...values) and value(v)",
		New: func(ctx context.Context, _ ...any) (any, error) {
			out := m.Out
			if out == nil {
				out = os.Stdout
			}
			p := &printer{out: out}
			return map[string]any{
				"line":  p.line,
				"value": p.value,
			}, nil
		},
	})
}

func (p *printer) line(args ...any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, strings.Join(parts, " "))
}

// value prints maps one sorted key per line and anything else as is.
func (p *printer) value(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var m map[string]any
	switch t := v.(type) {
	case nil:
		fmt.Fprintln(p.out, "(null)")
		return
	case map[string]any:
		m = t
	case map[string]string:
		m = make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
	default:
		fmt.Fprintf(p.out, "%v\n", v)
		return
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(p.out, "%s = %q\n", k, fmt.Sprint(m[k]))
	}
}
