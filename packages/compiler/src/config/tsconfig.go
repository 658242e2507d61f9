package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type TsConfig struct {
	CompilerOptions CompilerOptions `json:"compilerOptions"`
	Files           []string        `json:"files"`
	Include         []string        `json:"include"`
	Exclude         []string        `json:"exclude"`
}

type CompilerOptions struct {
	Target           string `json:"target"`
	Module           string `json:"module"`
	ModuleResolution string `json:"moduleResolution"`
}

// ParseTsConfig reads and parses a tsconfig.json file
func ParseTsConfig(path string) (*TsConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tsconfig: %w", err)
	}

	var config TsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse tsconfig: %w", err)
	}

	return &config, nil
}

// ExcludesPath reports whether rel falls under one of the tsconfig's
// exclude entries. Entries are matched as path prefixes or globs.
func (c *TsConfig) ExcludesPath(rel string) bool {
	for _, pat := range c.Exclude {
		if rel == pat {
			return true
		}
		if matched, err := filepath.Match(pat, rel); err == nil && matched {
			return true
		}
		if len(rel) > len(pat) && rel[:len(pat)] == pat && rel[len(pat)] == filepath.Separator {
			return true
		}
	}
	return false
}
