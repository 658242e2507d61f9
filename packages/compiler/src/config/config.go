package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the optional project config file read from the build root.
const FileName = "bfc.json"

// BuildConfig is the project-level build configuration. CLI flags override
// any value set here.
type BuildConfig struct {
	OutDir     string `json:"outDir"`
	Adapter    string `json:"adapter"`
	ClientOnly bool   `json:"clientOnly"`
	Minify     bool   `json:"minify"`
}

// NewBuildConfig creates a BuildConfig with optional parameters
func NewBuildConfig(opts ...BuildConfigOption) *BuildConfig {
	cfg := &BuildConfig{
		OutDir:  "dist",
		Adapter: "hono",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// BuildConfigOption is a function that modifies BuildConfig
type BuildConfigOption func(*BuildConfig)

// WithOutDir sets the output directory
func WithOutDir(dir string) BuildConfigOption {
	return func(cfg *BuildConfig) {
		cfg.OutDir = dir
	}
}

// WithAdapter sets the server template backend
func WithAdapter(name string) BuildConfigOption {
	return func(cfg *BuildConfig) {
		cfg.Adapter = name
	}
}

// Load reads the bfc.json under root. A missing file yields the defaults.
func Load(root string) (*BuildConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return NewBuildConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	cfg := NewBuildConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}
