// Package registry provides the central "glue" between natively compiled Go
// modules and the module-loading runtime.
//
// A native module is a Go constructor registered under a module id. During
// application startup every native is installed into the engine as a
// declared module, so scripts can depend on "env" or "http" exactly like on
// any fetched module. Nothing is constructed until something requires it.
//
// The registry is validated before installation so that a misnamed or
// duplicated native fails the startup instead of surfacing as a confusing
// load error later.
package registry
