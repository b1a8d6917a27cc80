package ast

import (
	"bytes"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// LanguageAdapter maps one grammar's node shapes onto the normalized IR.
// Implementations own their node-kind tables and doc-comment attachment
// rules; the shape of the result is fixed by this contract. All extract
// methods return results in source order and must be deterministic for
// identical input.
type LanguageAdapter interface {
	// Language returns the id this adapter handles.
	Language() Language

	// Grammar returns the tree-sitter language used to configure a parser.
	Grammar() *tree_sitter.Language

	// ExtractDeclarations returns top-level declarations. Container kinds
	// populate exactly one level of Children.
	ExtractDeclarations(root *tree_sitter.Node, source []byte) []Declaration

	// ExtractImports returns import-like statements.
	ExtractImports(root *tree_sitter.Node, source []byte) []ImportLike

	// ExtractComments returns all comments, recursively over the whole tree.
	ExtractComments(root *tree_sitter.Node, source []byte) []Comment

	// ExtractBody relocates the declaration's span in the given tree and
	// describes control flow, calls, and nested function-like declarations
	// inside it. Returns nil when the span cannot be located or the kind has
	// no body.
	ExtractBody(root *tree_sitter.Node, source []byte, decl *Declaration) *Block

	// ExtractVisibility resolves the access level of a single node.
	ExtractVisibility(node *tree_sitter.Node, source []byte) Visibility
}

// --- Shared leaf helpers ---
// Per-adapter walkers stay separate (the grammars share no tree shape), but
// span conversion, text access, error collection, and doc cleaning are
// shared policy.

// nodeSpan converts a tree-sitter node range to a Span.
func nodeSpan(node *tree_sitter.Node) Span {
	return Span{
		Start:       int(node.StartByte()),
		End:         int(node.EndByte()),
		StartLine:   int(node.StartPosition().Row) + 1,
		EndLine:     int(node.EndPosition().Row) + 1,
		StartColumn: int(node.StartPosition().Column),
		EndColumn:   int(node.EndPosition().Column),
	}
}

// nodeText returns the source text covered by the node.
func nodeText(node *tree_sitter.Node, source []byte) string {
	return node.Utf8Text(source)
}

// findChildByKind returns the first direct child with the given kind.
func findChildByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findChildrenByKind returns all direct children with the given kind.
func findChildrenByKind(node *tree_sitter.Node, kind string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

const (
	rawTextFullLimit = 200
	rawTextHeadBytes = 100
)

// truncateRaw keeps offending text short enough to carry in an
// UnknownRegion: verbatim under 200 bytes, otherwise the first 100 bytes
// with a length marker.
func truncateRaw(text string) string {
	if len(text) < rawTextFullLimit {
		return text
	}
	return fmt.Sprintf("%s... (%d bytes)", text[:rawTextHeadBytes], len(text))
}

// collectUnknownRegions walks the whole tree and records every node flagged
// as a parse error or as missing. Non-fatal, always collected.
func collectUnknownRegions(root *tree_sitter.Node, source []byte) []UnknownRegion {
	var regions []UnknownRegion

	cursor := root.Walk()
	defer cursor.Close()

	var walk func()
	walk = func() {
		node := cursor.Node()
		if node.IsError() {
			regions = append(regions, UnknownRegion{
				Span:     nodeSpan(node),
				NodeKind: node.Kind(),
				Reason:   "syntax error",
				RawText:  truncateRaw(nodeText(node, source)),
			})
		} else if node.IsMissing() {
			regions = append(regions, UnknownRegion{
				Span:     nodeSpan(node),
				NodeKind: node.Kind(),
				Reason:   "missing syntax element",
				RawText:  truncateRaw(nodeText(node, source)),
			})
		}

		if cursor.GotoFirstChild() {
			walk()
			for cursor.GotoNextSibling() {
				walk()
			}
			cursor.GotoParent()
		}
	}
	walk()

	return regions
}

// cleanDocIndent strips the minimum common leading whitespace from all lines
// after the first, then trims the result. Applied uniformly to multi-line
// doc comment bodies across adapters.
func cleanDocIndent(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return strings.TrimSpace(text)
	}

	minIndent := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.TrimSpace(text)
	}

	out := []string{lines[0]}
	for _, line := range lines[1:] {
		if len(line) >= minIndent {
			out = append(out, line[minIndent:])
		} else {
			out = append(out, strings.TrimLeft(line, " \t"))
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// countLines counts 1-indexed lines in source, matching how editors number
// a final line without a trailing newline.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
