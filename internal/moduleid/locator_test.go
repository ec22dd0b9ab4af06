// internal/moduleid/locator_test.go
package moduleid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocator(t *testing.T) {
	exts := []string{".js", ".hcl"}
	testCases := []struct {
		name     string
		id       string
		basePath string
		suffix   string
		expected string
	}{
		{name: "defaults", id: "pkg/a", expected: "./pkg/a.js"},
		{name: "custom base path", id: "pkg/a", basePath: "/fixtures/", expected: "/fixtures/pkg/a.js"},
		{name: "custom suffix", id: "pkg/a", basePath: "lib/", suffix: ".hcl", expected: "lib/pkg/a.hcl"},
		{name: "absolute path", id: "/srv/a", basePath: "lib/", expected: "/srv/a"},
		{name: "url", id: "https://cdn.example.com/a", basePath: "lib/", expected: "https://cdn.example.com/a"},
		{name: "socket.io scheme", id: "sio://modules/a", basePath: "lib/", expected: "sio://modules/a"},
		{name: "known extension", id: "conf/settings.hcl", basePath: "lib/", expected: "conf/settings.hcl"},
		{name: "unknown extension", id: "jquery.min", basePath: "lib/", expected: "lib/jquery.min.js"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Locator(tc.id, tc.basePath, tc.suffix, exts))
		})
	}
}
