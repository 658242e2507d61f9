package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"bfc-go/packages/compiler/src/compiler"
	"bfc-go/packages/compiler/src/config"
	"bfc-go/packages/compiler/src/manifest"
	"bfc-go/packages/compiler/src/output"
	"bfc-go/packages/compiler/src/util"
)

var entryExtensions = map[string]bool{
	".tsx": true,
	".jsx": true,
}

func runBuild(ctx context.Context, cfg *buildConfig, logger *slog.Logger) error {
	entries, err := discoverEntries(cfg.rootDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no component entries under %s", cfg.rootDir)
	}
	logger.Info("build starting", "entries", len(entries), "adapter", cfg.adapter, "out", cfg.outDir)

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return err
	}
	var cache *manifest.Cache
	if !cfg.noCache {
		cache = manifest.OpenCache(filepath.Join(cfg.outDir, manifest.CacheFileName))
	}

	opts := compiler.Options{
		ServerAdapter: cfg.adapter,
		ClientOnly:    cfg.clientOnly,
		Minify:        cfg.minify,
	}
	loader := func(path string) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}

	var files []*compiler.FileResult
	fatal := false
	for _, entry := range entries {
		source, err := loader(entry)
		if err != nil {
			return err
		}
		sourceHash := manifest.Hash([]byte(source))
		if cache != nil {
			if cached, ok := cache.Lookup(entry, sourceHash); ok {
				logger.Debug("cache hit", "file", entry)
				files = append(files, cached)
				continue
			}
		}
		result, err := compiler.Compile(ctx, entry, loader, opts)
		if err != nil {
			return err
		}
		logDiagnostics(logger, entry, result.Errors)
		if result.HasFatal() {
			fatal = true
			continue
		}
		for _, fr := range result.Files {
			files = append(files, fr)
			if cache != nil {
				cache.Store(sourceHash, fr)
			}
		}
	}

	if err := writeArtifacts(cfg.outDir, files, logger); err != nil {
		return err
	}
	if cache != nil {
		if err := cache.Save(); err != nil {
			logger.Warn("cache not saved", "error", err)
		}
	}
	if fatal {
		return fmt.Errorf("build finished with errors")
	}
	logger.Info("build done", "files", len(files))
	return nil
}

// discoverEntries walks root for .tsx/.jsx files, honoring a .gitignore
// and a tsconfig.json exclude list at the root when they exist.
func discoverEntries(root string) ([]string, error) {
	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = gi
	}
	var tsconfig *config.TsConfig
	if ts, err := config.ParseTsConfig(filepath.Join(root, "tsconfig.json")); err == nil {
		tsconfig = ts
	}
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			if matcher != nil && rel != "." && matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			if tsconfig != nil && rel != "." && tsconfig.ExcludesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entryExtensions[filepath.Ext(path)] {
			return nil
		}
		if strings.HasSuffix(path, ".template.tsx") {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if tsconfig != nil && tsconfig.ExcludesPath(rel) {
			return nil
		}
		entries = append(entries, path)
		return nil
	})
	return entries, err
}

func writeArtifacts(outDir string, files []*compiler.FileResult, logger *slog.Logger) error {
	wroteClient := false
	for _, fr := range files {
		if fr.ServerArtifact != nil {
			if err := writeFile(outDir, fr.ServerArtifact.Name, fr.ServerArtifact.Source); err != nil {
				return err
			}
			logger.Debug("wrote", "artifact", fr.ServerArtifact.Name)
		}
		for _, a := range fr.ClientArtifacts {
			if err := writeFile(outDir, a.Name, a.Source); err != nil {
				return err
			}
			wroteClient = true
			logger.Debug("wrote", "artifact", a.Name)
		}
	}
	if wroteClient {
		if err := writeFile(outDir, output.RuntimeModuleName, output.RuntimeJS); err != nil {
			return err
		}
	}
	m := manifest.Build(files)
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return writeFile(outDir, manifest.FileName, string(data))
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func logDiagnostics(logger *slog.Logger, file string, errs []*util.ParseError) {
	for _, e := range errs {
		attrs := []any{"file", file, "code", e.Code, "pos", e.Span.Start.String()}
		if e.Level == util.ParseErrorLevelError {
			logger.Error(e.Msg, attrs...)
		} else {
			logger.Warn(e.Msg, attrs...)
		}
	}
}
