package ast

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ZoomInto re-reads and re-parses the file fresh, relocates the requested
// symbol, and returns it with optional body detail and surrounding context.
// A prior ProjectIndex is never consulted.
func (p *TreeSitterProvider) ZoomInto(ctx context.Context, filePath, symbolID string, opts ZoomOptions) (*ZoomResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &IOError{Path: filePath, Message: err.Error()}
	}
	if !utf8.Valid(source) {
		return nil, &IOError{Path: filePath, Message: "not a text file"}
	}

	lang := LanguageFromPath(filePath)
	adapter := p.registry.Get(lang)
	if adapter == nil {
		return nil, &UnsupportedLanguageError{Language: lang}
	}

	file, err := p.registry.Parse(source, lang)
	if err != nil {
		return nil, err
	}

	decl := findSymbol(file, symbolID)
	if decl == nil {
		return nil, &SymbolNotFoundError{File: filePath, Symbol: symbolID}
	}

	result := &ZoomResult{
		FilePath: filePath,
		Symbol:   *decl,
	}

	if opts.ExtractControlFlow || opts.ExtractCalls {
		result.Body = p.extractBodyFresh(adapter, source, decl)
	}

	if opts.ContextLines > 0 {
		result.Context = sliceContext(source, decl.Span, opts.ContextLines)
	}

	if decl.Span.Start <= decl.Span.End && decl.Span.End <= len(source) {
		result.SourceText = string(source[decl.Span.Start:decl.Span.End])
	}

	return result, nil
}

// findSymbol matches by id (kind:name:startLine) or bare name, first at the
// top level, then one level into each declaration's children.
func findSymbol(file *File, symbolID string) *Declaration {
	matches := func(d *Declaration) bool {
		return d.ID() == symbolID || d.Name == symbolID
	}

	for i := range file.Declarations {
		if matches(&file.Declarations[i]) {
			return &file.Declarations[i]
		}
	}
	for i := range file.Declarations {
		children := file.Declarations[i].Children
		for j := range children {
			if matches(&children[j]) {
				return &children[j]
			}
		}
	}
	return nil
}

// extractBodyFresh re-parses for body extraction so the adapter relocates
// the span in a tree of its own. A relocation failure yields nil, never an
// error.
func (p *TreeSitterProvider) extractBodyFresh(adapter LanguageAdapter, source []byte, decl *Declaration) *Block {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(adapter.Grammar()); err != nil {
		return nil
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	return adapter.ExtractBody(tree.RootNode(), source, decl)
}

// sliceContext cuts raw lines immediately before and after the span,
// clamped to the file bounds.
func sliceContext(source []byte, span Span, contextLines int) *ContextWindow {
	lines := strings.Split(string(source), "\n")

	startLine := span.StartLine - 1 // 0-indexed first line of the span
	if startLine < 0 {
		startLine = 0
	}
	endLine := span.EndLine // 0-indexed first line after the span
	if endLine > len(lines) {
		endLine = len(lines)
	}

	beforeStart := startLine - contextLines
	if beforeStart < 0 {
		beforeStart = 0
	}
	afterEnd := endLine + contextLines
	if afterEnd > len(lines) {
		afterEnd = len(lines)
	}

	return &ContextWindow{
		Before: append([]string{}, lines[beforeStart:startLine]...),
		After:  append([]string{}, lines[endLine:afterEnd]...),
	}
}
