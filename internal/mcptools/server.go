package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewAstMCPServer creates an MCP server with all 4 code map tools registered.
func NewAstMCPServer(svc *AstService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codemap-ast",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_project",
		Description: "Index a project tree into the normalized code model. Walks the directory, parses every supported source file with tree-sitter, and returns declaration/import statistics with a per-language breakdown.",
	}, svc.IndexProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "zoom_symbol",
		Description: "Drill into a single declaration of a file. Re-parses fresh, relocates the symbol by id or name, and returns its signature, body control flow and calls, optional surrounding source lines, and the verbatim source text.",
	}, svc.ZoomSymbol)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_file",
		Description: "Parse one source file and return its full normalized representation: declarations, imports, comments, and unknown regions.",
	}, svc.ParseFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_languages",
		Description: "List the language ids with a registered adapter.",
	}, svc.ListLanguages)

	return server
}

// RunMCPServer starts an HTTP server exposing the code map MCP tools.
func RunMCPServer(ctx context.Context, svc *AstService, addr string) error {
	server := NewAstMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
