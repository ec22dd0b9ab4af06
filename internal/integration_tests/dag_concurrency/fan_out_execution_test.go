package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/app"
	"github.com/vk/amdgo/internal/testutil"
)

// TestConcurrency_FanOutFetchesInParallel checks that the sources of sibling
// dependencies are fetched concurrently while factories still receive their
// arguments in declaration order.
func TestConcurrency_FanOutFetchesInParallel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := testutil.NewSlowSourceServer(t, 150*time.Millisecond, map[string]string{
		"/main.js": `define(["b", "c", "d"], function (b, c, d) { return [b, c, d].join(","); });`,
		"/b.js":    `define(function () { return "b"; });`,
		"/c.js":    `define(function () { return "c"; });`,
		"/d.js":    `define(function () { return "d"; });`,
	})

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		IDs: []string{"main"},
		Configure: func(_ string, cfg *app.Config) {
			cfg.BasePath = srv.URL + "/"
		},
	})

	// --- Assert ---
	testutil.AssertExports(t, result, "main", "b,c,d")

	b, ok := srv.Record("/b.js")
	require.True(t, ok)
	c, ok := srv.Record("/c.js")
	require.True(t, ok)
	d, ok := srv.Record("/d.js")
	require.True(t, ok)
	require.True(t, testutil.Overlaps(b, c), "b and c should be fetched concurrently")
	require.True(t, testutil.Overlaps(c, d), "c and d should be fetched concurrently")

	m, _ := srv.Record("/main.js")
	require.False(t, testutil.Overlaps(m, b), "dependencies are only known after main is evaluated")
}

// TestConcurrency_FanInWaitsForSlowest checks that a module with one slow and
// one fast dependency is initialized only after both are ready.
func TestConcurrency_FanInWaitsForSlowest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	slow := testutil.NewSlowSourceServer(t, 200*time.Millisecond, map[string]string{
		"/slow.js": `define(function () { return "slow"; });`,
	})
	files := map[string]string{
		"join.js": `define(["` + slow.URL + `/slow.js", "fast"], function (s, f) { return s + "+" + f; });`,
		"fast.js": `define(function () { return "fast"; });`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Harness{Files: files, IDs: []string{"join"}})

	// --- Assert ---
	testutil.AssertExports(t, result, "join", "slow+fast")
}
