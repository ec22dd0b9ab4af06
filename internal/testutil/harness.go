package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/app"
	"github.com/vk/amdgo/internal/hcl"
	"github.com/vk/amdgo/internal/registry"
)

// SafeBuffer is the thread-safe buffer the app tests use.
type SafeBuffer = app.SafeBuffer

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Harness describes one integration run. Files are written below a fresh
// temporary directory that also serves as the file source root; paths under
// "config/" are passed to the config loader.
type Harness struct {
	Files   map[string]string
	IDs     []string
	Modules []registry.Module
	// Configure adjusts the app config after the harness filled it in.
	Configure func(root string, cfg *app.Config)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, h Harness) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, h)
}

// RunIntegrationTestWithContext provides a standardized harness for running integration
// tests with a specific context provided by the caller.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, h Harness) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	for name, content := range h.Files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	appConfig := &app.Config{
		ConfigPaths: []string{filepath.Join(root, "config")},
		ModuleIDs:   h.IDs,
		Root:        root,
		LogLevel:    "debug",
		LogFormat:   "text",
	}
	if h.Configure != nil {
		h.Configure(root, appConfig)
	}

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	appConfig.LogWriter = logBuffer

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("AMDGO_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(outBuffer, appConfig, hcl.NewConfigLoader(), h.Modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("AMDGO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Output:    outBuffer.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
