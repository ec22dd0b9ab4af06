package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/amdgo/internal/hcl"
	"github.com/vk/amdgo/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. It returns the
// app, the buffer receiving its results, and the buffer receiving its logs.
func SetupAppTest(t *testing.T, appConfig *Config, modules ...registry.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	appConfig.LogWriter = logBuffer
	testApp := NewApp(outBuffer, appConfig, hcl.NewConfigLoader(), modules...)

	t.Cleanup(func() {
		if os.Getenv("AMDGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
