package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/amdgo/internal/config"
	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/fsutil"
	"github.com/vk/amdgo/internal/schema"
)

// ConfigLoader is the HCL-specific implementation of the config.Loader
// interface.
type ConfigLoader struct{}

// NewConfigLoader creates a new HCL configuration loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// Load parses every .hcl file found at paths and merges them, in order, into
// one model. Missing paths are skipped.
func (l *ConfigLoader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL config loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL config files.", "count", len(files))

	model := config.New()
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.ConfigFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		part, err := translateConfig(&root)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration in %s: %w", file, err)
		}
		model.Merge(part)
		logger.Debug("Merged config file.", "path", file)
	}

	logger.Debug("HCL config loading complete.", "headers", len(model.Headers), "preload", len(model.Preload))
	return model, nil
}

// findAllHCLFiles expands directories and keeps each file once, in order.
func (l *ConfigLoader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return all, nil
}
