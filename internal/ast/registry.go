package ast

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// AdapterRegistry owns one adapter per language id. It is populated once at
// startup and read-only afterwards, so it may be shared across concurrent
// workers without locking.
type AdapterRegistry struct {
	adapters map[Language]LanguageAdapter
}

// NewAdapterRegistry creates a registry with all built-in adapters
// registered: Rust, Python, TypeScript, TSX, and Go.
func NewAdapterRegistry() *AdapterRegistry {
	r := &AdapterRegistry{adapters: map[Language]LanguageAdapter{}}

	r.Register(newRustAdapter())
	r.Register(newPythonAdapter())
	r.Register(newTypeScriptAdapter())
	r.Register(newTsxAdapter())
	r.Register(newGoAdapter())

	return r
}

// Register inserts or replaces the adapter for its language id.
func (r *AdapterRegistry) Register(adapter LanguageAdapter) {
	r.adapters[adapter.Language()] = adapter
}

// Get returns the adapter for a language, or nil if none is registered.
func (r *AdapterRegistry) Get(lang Language) LanguageAdapter {
	return r.adapters[lang]
}

// Supports reports whether an adapter is registered for the language.
func (r *AdapterRegistry) Supports(lang Language) bool {
	_, ok := r.adapters[lang]
	return ok
}

// SupportedLanguages returns the registered language ids in sorted order.
func (r *AdapterRegistry) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(r.adapters))
	for l := range r.adapters {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Parse parses source as the given language and assembles a File from the
// adapter's extraction passes. A new parser is created for this call only;
// parser instances are never reused across calls.
func (r *AdapterRegistry) Parse(source []byte, lang Language) (*File, error) {
	adapter := r.Get(lang)
	if adapter == nil {
		return nil, &UnsupportedLanguageError{Language: lang}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(adapter.Grammar()); err != nil {
		return nil, &EngineError{Message: "set language: " + err.Error()}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &EngineError{Message: "parser returned no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()

	file := NewFile("", lang)
	file.Span = Span{
		Start:     0,
		End:       len(source),
		StartLine: 1,
		EndLine:   countLines(source),
	}
	file.Declarations = adapter.ExtractDeclarations(root, source)
	file.Imports = adapter.ExtractImports(root, source)
	file.Comments = adapter.ExtractComments(root, source)
	file.UnknownRegions = collectUnknownRegions(root, source)

	return file, nil
}
