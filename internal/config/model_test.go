package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModel_Merge(t *testing.T) {
	// --- Arrange ---
	strict := false
	base := New()
	base.Runtime.BasePath = "./a/"
	base.Runtime.Suffix = ".js"
	base.Headers["X-One"] = "1"
	base.Preload = []string{"env"}

	overlay := &Model{
		Runtime:  Runtime{BasePath: "./b/", Strict: &strict, FetchTimeout: time.Second},
		Headers:  map[string]string{"X-Two": "2"},
		Preload:  []string{"boot"},
		SocketIO: &SocketIO{URL: "http://localhost:3000"},
	}

	// --- Act ---
	base.Merge(overlay)
	base.Merge(nil)

	// --- Assert ---
	assert.Equal(t, "./b/", base.Runtime.BasePath)
	assert.Equal(t, ".js", base.Runtime.Suffix, "unset fields keep their value")
	assert.Same(t, &strict, base.Runtime.Strict)
	assert.Equal(t, time.Second, base.Runtime.FetchTimeout)
	assert.Equal(t, map[string]string{"X-One": "1", "X-Two": "2"}, base.Headers)
	assert.Equal(t, []string{"env", "boot"}, base.Preload)
	assert.Equal(t, "http://localhost:3000", base.SocketIO.URL)
}
