package ast

import "fmt"

// UnsupportedLanguageError is returned when no adapter is registered for a
// language. Parsing is never attempted.
type UnsupportedLanguageError struct {
	Language Language
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Language)
}

// EngineError is returned when tree-sitter fails to configure a parser or to
// produce a tree. It fails only the file being parsed.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("tree-sitter error: %s", e.Message)
}

// ParseError is returned when extraction invariants are unmet even with a
// valid tree. Partial results may still be available.
type ParseError struct {
	Message string
	Partial *File
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// HasPartial reports whether a best-effort partial File is attached.
func (e *ParseError) HasPartial() bool {
	return e.Partial != nil
}

// SymbolNotFoundError is returned when a zoom lookup finds no matching
// declaration at the top level or one level into children.
type SymbolNotFoundError struct {
	File   string
	Symbol string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found in file %q", e.Symbol, e.File)
}

// IOError is returned for unreadable files, for reasons other than invalid
// text encoding (which is treated as "not a source file", not an error).
type IOError struct {
	Path    string
	Message string
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o error: %s: %s", e.Path, e.Message)
}
