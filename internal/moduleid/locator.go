// internal/moduleid/locator.go
package moduleid

import (
	"path"
	"regexp"
	"slices"
)

// Defaults for locator computation.
const (
	DefaultBasePath = "./"
	DefaultSuffix   = ".js"
)

// schemeRegex matches ids that already carry a URL scheme, e.g. `https:` or `sio:`.
var schemeRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// Locator computes where the source of id lives. Ids that are absolute
// paths, carry a scheme, or end in one of the known source extensions are
// used verbatim; everything else becomes basePath + id + suffix.
func Locator(id, basePath, suffix string, extensions []string) string {
	if IsLiteral(id, extensions) {
		return id
	}
	if basePath == "" {
		basePath = DefaultBasePath
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return basePath + id + suffix
}

// IsLiteral reports whether id is already a locator.
func IsLiteral(id string, extensions []string) bool {
	if len(id) > 0 && id[0] == '/' {
		return true
	}
	if schemeRegex.MatchString(id) {
		return true
	}
	ext := path.Ext(id)
	return ext != "" && slices.Contains(extensions, ext)
}
