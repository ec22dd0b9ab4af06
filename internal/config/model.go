package config

import "time"

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Runtime  Runtime
	Headers  map[string]string
	Preload  []string
	SocketIO *SocketIO
}

// Runtime holds the module-loading settings.
type Runtime struct {
	// BasePath and Suffix frame non-literal ids into locators.
	BasePath string
	Suffix   string
	// Root is the directory plain file locators are taken against.
	Root string
	// Strict is nil when the configuration does not mention it.
	Strict       *bool
	FetchTimeout time.Duration
}

// SocketIO configures fetching sio:// locators from a socket.io server.
type SocketIO struct {
	URL                string
	Namespace          string
	FetchEvent         string
	InsecureSkipVerify bool
}

// New returns an empty model.
func New() *Model {
	return &Model{Headers: make(map[string]string)}
}

// Merge overlays other onto m. Set fields of other win; preload lists are
// concatenated.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	if other.Runtime.BasePath != "" {
		m.Runtime.BasePath = other.Runtime.BasePath
	}
	if other.Runtime.Suffix != "" {
		m.Runtime.Suffix = other.Runtime.Suffix
	}
	if other.Runtime.Root != "" {
		m.Runtime.Root = other.Runtime.Root
	}
	if other.Runtime.Strict != nil {
		m.Runtime.Strict = other.Runtime.Strict
	}
	if other.Runtime.FetchTimeout > 0 {
		m.Runtime.FetchTimeout = other.Runtime.FetchTimeout
	}
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	for k, v := range other.Headers {
		m.Headers[k] = v
	}
	m.Preload = append(m.Preload, other.Preload...)
	if other.SocketIO != nil {
		m.SocketIO = other.SocketIO
	}
}
