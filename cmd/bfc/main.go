package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"bfc-go/packages/compiler/src/config"
)

func usage() {
	fmt.Println(`bfc - barefoot component compiler
Usage: bfc <command> [flags]

Commands:
  build <dir>      Compile every component entry under <dir>
  help             Show help

Build flags:
  -out <dir>       Output directory (default "dist")
  -adapter <name>  Server template backend: hono or gotemplate (default "hono")
  -client-only     Skip server template emission
  -minify          Strip whitespace from emitted client modules
  -no-cache        Ignore and do not write the incremental cache
  -log-json <file> Also write build events as JSON lines to <file>
  -v               Verbose logging

A bfc.json at the build root may set outDir, adapter, clientOnly and
minify; flags take precedence. A tsconfig.json exclude list and a
.gitignore are honored during entry discovery.`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help":
		usage()
	case "build":
		cfg, err := parseBuildFlags(os.Args[2:])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger, closeLog, err := newLogger(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer closeLog()
		if err := runBuild(context.Background(), cfg, logger); err != nil {
			logger.Error("build failed", "error", err)
			closeLog()
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

type buildConfig struct {
	rootDir    string
	outDir     string
	adapter    string
	clientOnly bool
	minify     bool
	noCache    bool
	logJSON    string
	verbose    bool
}

func parseBuildFlags(args []string) (*buildConfig, error) {
	cfg := &buildConfig{}
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.StringVar(&cfg.outDir, "out", "dist", "output directory")
	fs.StringVar(&cfg.adapter, "adapter", "hono", "server template backend")
	fs.BoolVar(&cfg.clientOnly, "client-only", false, "skip server template emission")
	fs.BoolVar(&cfg.minify, "minify", false, "strip whitespace from client modules")
	fs.BoolVar(&cfg.noCache, "no-cache", false, "disable the incremental cache")
	fs.StringVar(&cfg.logJSON, "log-json", "", "JSON build log file")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.rootDir = "."
	if fs.NArg() > 0 {
		cfg.rootDir = fs.Arg(0)
	}
	if err := applyProjectConfig(cfg, fs); err != nil {
		return nil, err
	}
	if cfg.adapter != "hono" && cfg.adapter != "gotemplate" {
		return nil, fmt.Errorf("unknown adapter %q (want hono or gotemplate)", cfg.adapter)
	}
	return cfg, nil
}

// applyProjectConfig fills flag values the user did not set from the
// optional bfc.json at the build root.
func applyProjectConfig(cfg *buildConfig, fs *flag.FlagSet) error {
	project, err := config.Load(cfg.rootDir)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["out"] && project.OutDir != "" {
		cfg.outDir = project.OutDir
	}
	if !set["adapter"] && project.Adapter != "" {
		cfg.adapter = project.Adapter
	}
	if !set["client-only"] && project.ClientOnly {
		cfg.clientOnly = true
	}
	if !set["minify"] && project.Minify {
		cfg.minify = true
	}
	return nil
}

// newLogger builds the CLI logger: always a text handler on stderr, plus a
// JSON handler fanned out to the build log file when requested.
func newLogger(cfg *buildConfig) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if cfg.logJSON == "" {
		return slog.New(stderrHandler), func() {}, nil
	}
	logFile, err := os.Create(cfg.logJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("open build log: %w", err)
	}
	handler := slogmulti.Fanout(
		stderrHandler,
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	return slog.New(handler), func() { logFile.Close() }, nil
}
