// internal/moduleid/resolve.go
package moduleid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAboveRoot is returned when a relative path climbs past the first segment
// of its base id. Such paths are rejected rather than clamped.
var ErrAboveRoot = errors.New("relative path ascends above the root")

// Reserved ids are injected by the runtime and never fetched.
const (
	Require = "require"
	Exports = "exports"
	Module  = "module"
)

// IsReserved reports whether id names one of the CommonJS pseudo-dependencies.
func IsReserved(id string) bool {
	return id == Require || id == Exports || id == Module
}

// IsRelative reports whether path starts with a `.` or `..` segment.
func IsRelative(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return first == "." || first == ".."
}

// Dir returns the directory portion of id, including the trailing slash.
// Ids without a slash have an empty directory.
func Dir(id string) string {
	i := strings.LastIndexByte(id, '/')
	if i < 0 {
		return ""
	}
	return id[:i+1]
}

// Resolve canonicalizes path against the module id baseID.
func Resolve(baseID, path string) (string, error) {
	if !IsRelative(path) {
		return path, nil
	}

	joined := Dir(baseID) + path

	// A scheme prefix such as `https://` belongs to the locator, not to the
	// path, so it must survive slash collapsing untouched.
	prefix := ""
	if i := strings.Index(joined, "://"); i > 0 && !strings.Contains(joined[:i], "/") {
		prefix, joined = joined[:i+3], joined[i+3:]
	} else if strings.HasPrefix(joined, "/") {
		prefix = "/"
	}

	var out []string
	for _, seg := range strings.Split(joined, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", fmt.Errorf("resolve %q against %q: %w", path, baseID, ErrAboveRoot)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	return prefix + strings.Join(out, "/"), nil
}

// ResolveAll canonicalizes every path in paths against baseID, preserving
// order. It stops at the first path that cannot be resolved.
func ResolveAll(baseID string, paths []string) ([]string, error) {
	ids := make([]string, len(paths))
	for i, p := range paths {
		id, err := Resolve(baseID, p)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
