// Package schema holds the HCL decoding targets for configuration files and
// HCL module sources.
package schema

import "github.com/hashicorp/hcl/v2"

// --- Configuration File ---

// ConfigFile is the top-level structure of a configuration file.
type ConfigFile struct {
	Runtime  *Runtime  `hcl:"runtime,block"`
	Headers  []*Header `hcl:"header,block"`
	SocketIO *SocketIO `hcl:"socketio,block"`
	Preload  []string  `hcl:"preload,optional"`
	Body     hcl.Body  `hcl:",remain"`
}

// Runtime is the `runtime` block.
type Runtime struct {
	BasePath     string `hcl:"base_path,optional"`
	Suffix       string `hcl:"suffix,optional"`
	Root         string `hcl:"root,optional"`
	Strict       *bool  `hcl:"strict,optional"`
	FetchTimeout string `hcl:"fetch_timeout,optional"`
}

// Header is a `header "<name>"` block; its value is sent with every HTTP
// source fetch.
type Header struct {
	Name  string `hcl:"name,label"`
	Value string `hcl:"value"`
}

// SocketIO is the `socketio` block.
type SocketIO struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	FetchEvent         string `hcl:"fetch_event,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// --- HCL Module Sources ---

// ModuleFile is the top-level structure of a .hcl module source. A file may
// define several modules; an unlabeled id takes the id the file was
// fetched for.
type ModuleFile struct {
	Defines []*Define `hcl:"define,block"`
}

// Define is a `define` block.
type Define struct {
	ID      string         `hcl:"id,optional"`
	Imports []*Import      `hcl:"import,block"`
	Exports hcl.Expression `hcl:"exports"`
}

// Import is an `import "<name>"` block binding the exports of module ID to
// the variable <name>. Type optionally constrains the imported value.
type Import struct {
	Name string         `hcl:"name,label"`
	ID   string         `hcl:"id"`
	Type hcl.Expression `hcl:"type,optional"`
}
