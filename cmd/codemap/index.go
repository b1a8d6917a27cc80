package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dusk-indust/codemap/internal/ast"
	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/export"
)

// indexFlags are the flags of the index command.
type indexFlags struct {
	Root     string
	MaxFiles int
	Include  string
	Exclude  string
	Workers  int
	JSONPath string
	Outline  bool
}

func runIndex(args []string) error {
	var flags indexFlags

	fs := flag.NewFlagSet("codemap index", flag.ContinueOnError)
	fs.StringVar(&flags.Root, "root", ".", "project root to index")
	fs.IntVar(&flags.MaxFiles, "max-files", 0, "stop after this many files (0 = unlimited)")
	fs.StringVar(&flags.Include, "include", "", "comma-separated include substrings")
	fs.StringVar(&flags.Exclude, "exclude", "", "comma-separated exclude substrings")
	fs.IntVar(&flags.Workers, "workers", 0, "parallel parse workers (0 = sequential)")
	fs.StringVar(&flags.JSONPath, "json", "", "write the full index as JSON to this path")
	fs.BoolVar(&flags.Outline, "outline", false, "print a markdown outline instead of the summary")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags.Root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags.MaxFiles, flags.Workers = cfg.IndexDefaults(flags.MaxFiles, flags.Workers)
	if flags.JSONPath == "" {
		flags.JSONPath = cfg.OutputPath
	}

	var langs []ast.Language
	for _, l := range cfg.Languages {
		langs = append(langs, ast.Language(l))
	}

	opts := ast.IndexOptions{
		MaxFiles:        flags.MaxFiles,
		IncludePatterns: splitPatterns(flags.Include, cfg.IncludePatterns),
		ExcludePatterns: splitPatterns(flags.Exclude, cfg.ExcludePatterns),
		ExcludeDirs:     cfg.ExcludeDirs,
		Languages:       langs,
		Workers:         flags.Workers,
	}

	provider := ast.NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), flags.Root, opts)
	if err != nil {
		return fmt.Errorf("index %s: %w", flags.Root, err)
	}

	if flags.JSONPath != "" {
		if err := export.ExportJSON(flags.JSONPath, index); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
	}

	if flags.Outline {
		return export.WriteOutline(os.Stdout, index)
	}

	if cfg.Verbose {
		for _, path := range index.SortedPaths() {
			file := index.Files[path]
			fmt.Printf("  %s: %d declarations, %d imports\n",
				path, file.TotalDeclarations(), len(file.Imports))
		}
	}

	fmt.Printf("indexed %s: %d files, %d declarations, %d imports (%d skipped, %d errors) in %dms\n",
		index.Root,
		index.Stats.FilesProcessed,
		index.Stats.DeclarationsFound,
		index.Stats.ImportsFound,
		index.Stats.FilesSkipped,
		len(index.Errors),
		index.Stats.ParseTimeMs,
	)
	for _, e := range index.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Path, e.Message)
	}
	return nil
}

// splitPatterns merges a comma-separated flag value with config defaults.
func splitPatterns(flagValue string, fromConfig []string) []string {
	out := append([]string{}, fromConfig...)
	for _, p := range strings.Split(flagValue, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
