package ast

import "context"

// IndexOptions controls a project indexing sweep.
type IndexOptions struct {
	// MaxFiles stops the sweep after this many processed files; 0 means
	// unlimited.
	MaxFiles int `json:"maxFiles,omitempty"`

	// IncludePatterns keeps only paths containing one of these substrings.
	IncludePatterns []string `json:"includePatterns,omitempty"`

	// ExcludePatterns drops paths containing one of these substrings.
	ExcludePatterns []string `json:"excludePatterns,omitempty"`

	// ExcludeDirs names additional directories never descended into, on top
	// of the built-in deny list.
	ExcludeDirs []string `json:"excludeDirs,omitempty"`

	// Languages restricts the sweep to these language ids; empty means all
	// supported languages.
	Languages []Language `json:"languages,omitempty"`

	// FollowSymlinks descends into symlinked directories.
	FollowSymlinks bool `json:"followSymlinks,omitempty"`

	// Workers bounds parallel per-file parsing. Values below 2 run the
	// sweep sequentially. Output is identical either way.
	Workers int `json:"workers,omitempty"`
}

// ZoomOptions controls symbol drill-down.
type ZoomOptions struct {
	ExtractControlFlow bool `json:"extractControlFlow"`
	ExtractCalls       bool `json:"extractCalls"`
	ContextLines       int  `json:"contextLines,omitempty"`
}

// DefaultZoomOptions extracts body detail with no context window.
func DefaultZoomOptions() ZoomOptions {
	return ZoomOptions{
		ExtractControlFlow: true,
		ExtractCalls:       true,
	}
}

// LanguageStats breaks index totals down by language.
type LanguageStats struct {
	Files        int `json:"files"`
	Declarations int `json:"declarations"`
	Imports      int `json:"imports"`
}

// IndexStats summarizes one indexing sweep.
type IndexStats struct {
	FilesProcessed    int                      `json:"filesProcessed"`
	FilesSkipped      int                      `json:"filesSkipped"`
	DeclarationsFound int                      `json:"declarationsFound"`
	ImportsFound      int                      `json:"importsFound"`
	UnknownRegions    int                      `json:"unknownRegions"`
	ParseTimeMs       int64                    `json:"parseTimeMs"`
	ByLanguage        map[string]LanguageStats `json:"byLanguage,omitempty"`
}

// IndexError records a per-file failure during a sweep. Recoverable errors
// contributed a partial File to the index anyway.
type IndexError struct {
	Path        string `json:"path"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// ProjectIndex is the immutable result of index_project: every parsed File
// keyed by root-relative path, plus aggregate stats and per-file errors.
// A changed file requires re-running the index.
type ProjectIndex struct {
	Root   string           `json:"root"`
	Files  map[string]*File `json:"files"`
	Stats  IndexStats       `json:"stats"`
	Errors []IndexError     `json:"errors,omitempty"`
}

// NewProjectIndex creates an empty index for the given root.
func NewProjectIndex(root string) *ProjectIndex {
	return &ProjectIndex{
		Root:  root,
		Files: map[string]*File{},
	}
}

// SortedPaths returns the indexed file paths in lexicographic order.
func (p *ProjectIndex) SortedPaths() []string {
	return sortedKeys(p.Files)
}

// AllDeclarations returns every top-level declaration with its file path, in
// sorted path order.
func (p *ProjectIndex) AllDeclarations() []FileDeclaration {
	var out []FileDeclaration
	for _, path := range sortedKeys(p.Files) {
		file := p.Files[path]
		for i := range file.Declarations {
			out = append(out, FileDeclaration{Path: path, Declaration: &file.Declarations[i]})
		}
	}
	return out
}

// FindByName returns all top-level declarations with the given name.
func (p *ProjectIndex) FindByName(name string) []FileDeclaration {
	var out []FileDeclaration
	for _, fd := range p.AllDeclarations() {
		if fd.Declaration.Name == name {
			out = append(out, fd)
		}
	}
	return out
}

// TotalDeclarations counts declarations across all indexed files, including
// nested children.
func (p *ProjectIndex) TotalDeclarations() int {
	n := 0
	for _, f := range p.Files {
		n += f.TotalDeclarations()
	}
	return n
}

// FileDeclaration pairs a declaration with the file it came from.
type FileDeclaration struct {
	Path        string       `json:"path"`
	Declaration *Declaration `json:"declaration"`
}

// ContextWindow holds raw source lines around a zoomed declaration.
type ContextWindow struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// ZoomResult is the output of zoom_into: the relocated declaration, its
// body detail when requested, optional surrounding lines, and the verbatim
// source text of its span.
type ZoomResult struct {
	FilePath   string         `json:"filePath"`
	Symbol     Declaration    `json:"symbol"`
	Body       *Block         `json:"body,omitempty"`
	Context    *ContextWindow `json:"context,omitempty"`
	SourceText string         `json:"sourceText,omitempty"`
}

// Provider turns single-file parses into a whole-project index and into
// on-demand symbol drill-down.
type Provider interface {
	IndexProject(ctx context.Context, root string, opts IndexOptions) (*ProjectIndex, error)
	ZoomInto(ctx context.Context, filePath, symbolID string, opts ZoomOptions) (*ZoomResult, error)
	ParseFile(source []byte, lang Language) (*File, error)
	SupportedLanguages() []Language
}
