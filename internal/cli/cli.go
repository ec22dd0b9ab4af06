package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/amdgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("amdgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
amdgo - Load AMD modules on demand and print their exports.

Usage:
  amdgo [options] MODULE_ID [MODULE_ID...]

Arguments:
  MODULE_ID
    Canonical id of a module to load, e.g. "app/main".

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths []string
	flagSet.Func("config", "Path to an .hcl config file or directory. May be repeated.", func(s string) error {
		configPaths = append(configPaths, s)
		return nil
	})
	flagSet.Func("c", "Path to an .hcl config file or directory (shorthand).", func(s string) error {
		configPaths = append(configPaths, s)
		return nil
	})
	basePathFlag := flagSet.String("base-path", "", "Prefix joined to module ids to form locators. Overrides the config file.")
	suffixFlag := flagSet.String("suffix", "", "Suffix appended to module ids to form locators. Overrides the config file.")
	rootFlag := flagSet.String("root", "", "Directory plain file locators are resolved against.")
	fetchTimeoutFlag := flagSet.Duration("fetch-timeout", 0, "Timeout for a single source fetch, e.g. 10s. 0 keeps the configured value.")
	lenientFlag := flagSet.Bool("lenient", false, "Log internal protocol violations instead of aborting.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP status server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	ids := flagSet.Args()
	if len(ids) == 0 {
		slog.Debug("No module ids provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths:     configPaths,
		ModuleIDs:       ids,
		BasePath:        *basePathFlag,
		Suffix:          *suffixFlag,
		Root:            *rootFlag,
		FetchTimeout:    *fetchTimeoutFlag,
		Lenient:         *lenientFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
