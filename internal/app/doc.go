// Package app contains the core application logic. It wires configuration,
// sources, evaluators, and native modules into a module-loading runtime and
// drives a single load to completion, decoupled from any specific entrypoint
// like a CLI or server.
package app
