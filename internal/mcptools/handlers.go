package mcptools

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dusk-indust/codemap/internal/ast"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AstService holds the provider used by MCP tool handlers.
type AstService struct {
	provider *ast.TreeSitterProvider
}

// NewAstService creates an AstService over the given provider.
func NewAstService(provider *ast.TreeSitterProvider) *AstService {
	return &AstService{provider: provider}
}

// IndexProject sweeps a project tree and returns aggregate statistics.
func (s *AstService) IndexProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexProjectInput,
) (*mcp.CallToolResult, IndexProjectOutput, error) {
	if input.Root == "" {
		return nil, IndexProjectOutput{}, fmt.Errorf("root is required")
	}

	info, err := os.Stat(input.Root)
	if err != nil {
		return nil, IndexProjectOutput{}, fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, IndexProjectOutput{}, fmt.Errorf("root is not a directory: %s", input.Root)
	}

	index, err := s.provider.IndexProject(ctx, input.Root, ast.IndexOptions{
		MaxFiles:        input.MaxFiles,
		IncludePatterns: input.IncludePatterns,
		ExcludePatterns: input.ExcludePatterns,
		Workers:         input.Workers,
	})
	if err != nil {
		return nil, IndexProjectOutput{}, fmt.Errorf("index project: %w", err)
	}

	return nil, IndexProjectOutput{
		Root:      index.Root,
		FileCount: len(index.Files),
		Stats:     index.Stats,
		Errors:    index.Errors,
	}, nil
}

// ZoomSymbol drills into one declaration of one file.
func (s *AstService) ZoomSymbol(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ZoomSymbolInput,
) (*mcp.CallToolResult, ZoomSymbolOutput, error) {
	if input.FilePath == "" {
		return nil, ZoomSymbolOutput{}, fmt.Errorf("filePath is required")
	}
	if input.Symbol == "" {
		return nil, ZoomSymbolOutput{}, fmt.Errorf("symbol is required")
	}

	opts := ast.DefaultZoomOptions()
	opts.ContextLines = input.ContextLines
	if input.SkipBody {
		opts.ExtractControlFlow = false
		opts.ExtractCalls = false
	}

	result, err := s.provider.ZoomInto(ctx, input.FilePath, input.Symbol, opts)
	if err != nil {
		return nil, ZoomSymbolOutput{}, fmt.Errorf("zoom: %w", err)
	}

	return nil, ZoomSymbolOutput{
		FilePath:   result.FilePath,
		Symbol:     newDeclarationInfo(&result.Symbol),
		Body:       newBodyInfo(result.Body),
		Context:    result.Context,
		SourceText: result.SourceText,
	}, nil
}

// ParseFile parses a single file and returns its full IR.
func (s *AstService) ParseFile(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseFileInput,
) (*mcp.CallToolResult, ParseFileOutput, error) {
	if input.FilePath == "" {
		return nil, ParseFileOutput{}, fmt.Errorf("filePath is required")
	}

	source, err := os.ReadFile(input.FilePath)
	if err != nil {
		return nil, ParseFileOutput{}, fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(source) {
		return nil, ParseFileOutput{}, fmt.Errorf("not a text file: %s", input.FilePath)
	}

	file, err := s.provider.ParseFile(source, ast.LanguageFromPath(input.FilePath))
	if err != nil {
		return nil, ParseFileOutput{}, fmt.Errorf("parse: %w", err)
	}
	file.Path = input.FilePath

	return nil, ParseFileOutput{File: newFileInfo(file)}, nil
}

// ListLanguages returns the language ids with a registered adapter.
func (s *AstService) ListLanguages(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListLanguagesInput,
) (*mcp.CallToolResult, ListLanguagesOutput, error) {
	return nil, ListLanguagesOutput{Languages: s.provider.SupportedLanguages()}, nil
}
