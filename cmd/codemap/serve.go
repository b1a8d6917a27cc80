package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/codemap/internal/ast"
	"github.com/dusk-indust/codemap/internal/mcptools"
)

func runServeMCP(args []string) error {
	var addr string

	fs := flag.NewFlagSet("codemap serve-mcp", flag.ContinueOnError)
	fs.StringVar(&addr, "addr", ":8137", "listen address for the MCP server")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := mcptools.NewAstService(ast.NewTreeSitterProvider())
	fmt.Printf("codemap MCP server listening on %s\n", addr)
	return mcptools.RunMCPServer(ctx, svc, addr)
}
