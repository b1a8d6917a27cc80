package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/dusk-indust/codemap/internal/ast"
	"github.com/dusk-indust/codemap/internal/config"
)

// zoomFlags are the flags of the zoom command.
type zoomFlags struct {
	File    string
	Symbol  string
	Context int
	NoBody  bool
}

func runZoom(args []string) error {
	var flags zoomFlags

	fs := flag.NewFlagSet("codemap zoom", flag.ContinueOnError)
	fs.StringVar(&flags.File, "file", "", "source file to search")
	fs.StringVar(&flags.Symbol, "symbol", "", "symbol id (kind:name:startLine) or bare name")
	fs.IntVar(&flags.Context, "context", 0, "raw source lines before and after the declaration")
	fs.BoolVar(&flags.NoBody, "no-body", false, "skip control flow and call extraction")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if flags.File == "" || flags.Symbol == "" {
		return fmt.Errorf("zoom requires -file and -symbol")
	}

	if flags.Context == 0 {
		if cfg, err := config.Load(filepath.Dir(flags.File)); err == nil {
			flags.Context = cfg.ContextLines
		}
	}

	opts := ast.DefaultZoomOptions()
	opts.ContextLines = flags.Context
	if flags.NoBody {
		opts.ExtractControlFlow = false
		opts.ExtractCalls = false
	}

	provider := ast.NewTreeSitterProvider()
	result, err := provider.ZoomInto(context.Background(), flags.File, flags.Symbol, opts)
	if err != nil {
		return err
	}

	sym := &result.Symbol
	fmt.Printf("%s %s [%s] %s:%d-%d\n",
		sym.Kind, sym.Name, sym.Visibility, result.FilePath, sym.Span.StartLine, sym.Span.EndLine)
	if sym.DocComment != nil {
		fmt.Printf("doc: %s\n", sym.DocComment.Text)
	}
	if result.Body != nil {
		fmt.Printf("body: %d control flow, %d calls, %d nested declarations\n",
			len(result.Body.ControlFlow), len(result.Body.Calls), len(result.Body.NestedDeclarations))
	}

	if result.Context != nil {
		for _, line := range result.Context.Before {
			fmt.Printf("  | %s\n", line)
		}
	}
	fmt.Println(result.SourceText)
	if result.Context != nil {
		for _, line := range result.Context.After {
			fmt.Printf("  | %s\n", line)
		}
	}
	return nil
}
