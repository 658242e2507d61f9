// Package compiler turns JSX component sources into marked server
// templates and client hydration modules.
//
// The pipeline per entry file is parse (jsx_parser), classify (analyzer),
// build IR with slot assignment (ir), then emit (output). Compilation is
// deterministic: the same inputs always produce byte-identical artifacts.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/output"
	"bfc-go/packages/compiler/src/util"
)

// Loader resolves a source path to its contents. The CLI passes os.ReadFile;
// tests pass maps.
type Loader func(path string) (string, error)

// Options configures a compilation.
type Options struct {
	// ServerAdapter selects the template backend: "hono" (default) or
	// "gotemplate".
	ServerAdapter string
	// ClientOnly skips server template emission.
	ClientOnly bool
	// Minify strips insignificant whitespace from emitted JS.
	Minify bool
}

// Artifact is one emitted output file.
type Artifact struct {
	// Name is the output filename, relative to the build output dir.
	Name   string
	Source string
}

// FileResult holds everything compiled from one entry file.
type FileResult struct {
	SourcePath      string
	ServerArtifact  *Artifact
	ClientArtifacts []*Artifact
	ComponentNames  []string
	// ComponentProps maps component name to its resolved prop shape.
	ComponentProps map[string][]*jsx_parser.PropShape
	// Components exposes the built IR for downstream consumers such as
	// the host-side hydrator.
	Components []*ir.Component
}

// Result is a whole compilation's output. A file with fatal parse errors
// contributes diagnostics but no artifacts; other files still compile.
type Result struct {
	Files  []*FileResult
	Errors []*util.ParseError
}

// ErrNoComponents reports an entry file that parsed cleanly but exports
// no component.
var ErrNoComponents = errors.New("no exported components")

// HasFatal reports whether any diagnostic is error-level.
func (r *Result) HasFatal() bool {
	return hasFatal(r.Errors)
}

// Compile compiles one entry file and, transitively, nothing else: imports
// of other components are compiled by their own Compile calls and linked
// by name at hydration time.
func Compile(ctx context.Context, entryFilePath string, loader Loader, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, err := loader(entryFilePath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", entryFilePath, err)
	}

	result := &Result{}
	file := jsx_parser.ParseFile(source, entryFilePath)
	result.Errors = append(result.Errors, file.Errors...)
	if hasFatal(file.Errors) {
		return result, nil
	}
	if len(file.Components) == 0 {
		return result, fmt.Errorf("%s: %w", entryFilePath, ErrNoComponents)
	}

	fr := &FileResult{
		SourcePath:     entryFilePath,
		ComponentProps: map[string][]*jsx_parser.PropShape{},
	}
	templateEmitter := output.NewTemplateEmitter(opts.ServerAdapter)
	clientEmitter := &output.ClientEmitter{}

	var serverSources []string
	for _, component := range file.Components {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := analyzer.Analyze(file, component)
		result.Errors = append(result.Errors, a.Warnings...)

		c, irErrs := ir.Build(a)
		result.Errors = append(result.Errors, irErrs...)
		if hasFatal(irErrs) {
			continue
		}

		fr.ComponentNames = append(fr.ComponentNames, component.Name)
		fr.ComponentProps[component.Name] = component.PropsShape
		fr.Components = append(fr.Components, c)

		if !opts.ClientOnly {
			src, err := templateEmitter.EmitTemplate(c)
			if err != nil {
				return nil, fmt.Errorf("emit template for %s: %w", component.Name, err)
			}
			serverSources = append(serverSources, src)
		}
		clientSrc, err := clientEmitter.EmitModule(c)
		if err != nil {
			return nil, fmt.Errorf("emit client module for %s: %w", component.Name, err)
		}
		if clientSrc != "" {
			if opts.Minify {
				clientSrc = minifyJS(clientSrc)
			}
			fr.ClientArtifacts = append(fr.ClientArtifacts, &Artifact{
				Name:   component.Name + ".client.js",
				Source: clientSrc,
			})
		}
	}

	if len(serverSources) > 0 {
		base := strings.TrimSuffix(filepath.Base(entryFilePath), filepath.Ext(entryFilePath))
		fr.ServerArtifact = &Artifact{
			Name:   base + templateEmitter.FileExt(),
			Source: strings.Join(serverSources, "\n"),
		}
	}
	if len(fr.ComponentNames) > 0 {
		result.Files = append(result.Files, fr)
	}
	return result, nil
}

func hasFatal(errs []*util.ParseError) bool {
	for _, e := range errs {
		if e.Level == util.ParseErrorLevelError {
			return true
		}
	}
	return false
}

// minifyJS drops indentation and blank lines. Emitted modules put every
// statement on its own line, so whitespace is the only fat to trim.
func minifyJS(src string) string {
	lines := strings.Split(src, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n") + "\n"
}
