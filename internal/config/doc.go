// Package config defines the format-agnostic configuration model for the
// application, along with the core interfaces (Loader, Converter) for
// loading configuration and for moving module exports between Go and the
// value system of a configuration language.
//
// The `config.Model` is what the app turns into engine.Options and fetcher
// setup. Concrete implementations of the interfaces, such as for HCL, are
// provided in separate packages.
package config
