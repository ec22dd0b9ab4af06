package integration_tests

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/cli"
)

// TestCLI_DisplaysHelp checks that running without module ids prints usage.
func TestCLI_DisplaysHelp(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := cli.Parse([]string{}, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Nil(t, cfg)
	require.Contains(t, out.String(), "amdgo [options] MODULE_ID")
	require.Contains(t, out.String(), "-fetch-timeout")
}
