package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File reads sources from the local file system. Plain locators are taken
// relative to Root; file:// locators are used as absolute paths.
type File struct {
	Root string
}

// NewFile creates a file fetcher rooted at root ("" means the working directory).
func NewFile(root string) *File {
	return &File{Root: root}
}

// Fetch implements Fetcher.
func (f *File) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := req.Locator
	if rest, ok := strings.CutPrefix(path, "file://"); ok {
		path = rest
	} else if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read module source %s: %w", path, err)
	}
	return data, nil
}
