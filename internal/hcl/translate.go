package hcl

import (
	"fmt"
	"time"

	"github.com/vk/amdgo/internal/config"
	"github.com/vk/amdgo/internal/schema"
)

// translateConfig converts the HCL-specific schema into the agnostic model.
func translateConfig(f *schema.ConfigFile) (*config.Model, error) {
	m := config.New()
	m.Preload = f.Preload

	if r := f.Runtime; r != nil {
		m.Runtime = config.Runtime{
			BasePath: r.BasePath,
			Suffix:   r.Suffix,
			Root:     r.Root,
			Strict:   r.Strict,
		}
		if r.FetchTimeout != "" {
			d, err := time.ParseDuration(r.FetchTimeout)
			if err != nil {
				return nil, fmt.Errorf("runtime.fetch_timeout: %w", err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("runtime.fetch_timeout must be positive, got %s", d)
			}
			m.Runtime.FetchTimeout = d
		}
	}

	for _, h := range f.Headers {
		if _, dup := m.Headers[h.Name]; dup {
			return nil, fmt.Errorf("header %q declared twice", h.Name)
		}
		m.Headers[h.Name] = h.Value
	}

	if s := f.SocketIO; s != nil {
		m.SocketIO = &config.SocketIO{
			URL:                s.URL,
			Namespace:          s.Namespace,
			FetchEvent:         s.FetchEvent,
			InsecureSkipVerify: s.InsecureSkipVerify,
		}
	}
	return m, nil
}
