// Package cli turns command-line arguments into an app.Config. It owns the
// usage text, flag validation, and the exit codes reported for bad input.
package cli
