package mcptools

import "github.com/dusk-indust/codemap/internal/ast"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// IndexProjectInput is the input for the index_project MCP tool.
type IndexProjectInput struct {
	Root            string   `json:"root" jsonschema:"the absolute path of the project to index"`
	MaxFiles        int      `json:"maxFiles,omitempty" jsonschema:"stop after this many files (0 = unlimited)"`
	IncludePatterns []string `json:"includePatterns,omitempty" jsonschema:"only index paths containing one of these substrings"`
	ExcludePatterns []string `json:"excludePatterns,omitempty" jsonschema:"skip paths containing one of these substrings"`
	Workers         int      `json:"workers,omitempty" jsonschema:"parallel parse workers (default: sequential)"`
}

// IndexProjectOutput is the result of the index_project MCP tool.
type IndexProjectOutput struct {
	Root      string           `json:"root"`
	FileCount int              `json:"fileCount"`
	Stats     ast.IndexStats   `json:"stats"`
	Errors    []ast.IndexError `json:"errors,omitempty"`
}

// ZoomSymbolInput is the input for the zoom_symbol MCP tool.
type ZoomSymbolInput struct {
	FilePath     string `json:"filePath" jsonschema:"path of the source file to search"`
	Symbol       string `json:"symbol" jsonschema:"symbol id (kind:name:startLine) or a bare declaration name"`
	ContextLines int    `json:"contextLines,omitempty" jsonschema:"raw source lines to include before and after the declaration"`
	SkipBody     bool   `json:"skipBody,omitempty" jsonschema:"skip control flow and call extraction"`
}

// ZoomSymbolOutput is the result of the zoom_symbol MCP tool.
type ZoomSymbolOutput struct {
	FilePath   string             `json:"filePath"`
	Symbol     DeclarationInfo    `json:"symbol"`
	Body       *BodyInfo          `json:"body,omitempty"`
	Context    *ast.ContextWindow `json:"context,omitempty"`
	SourceText string             `json:"sourceText,omitempty"`
}

// ParseFileInput is the input for the parse_file MCP tool.
type ParseFileInput struct {
	FilePath string `json:"filePath" jsonschema:"path of the source file to parse"`
}

// ParseFileOutput is the result of the parse_file MCP tool.
type ParseFileOutput struct {
	File *FileInfo `json:"file"`
}

// ListLanguagesInput is the input for the list_languages MCP tool.
type ListLanguagesInput struct{}

// ListLanguagesOutput is the result of the list_languages MCP tool.
type ListLanguagesOutput struct {
	Languages []ast.Language `json:"languages"`
}

// --- MCP Tool Output Shapes ---
// The SDK's schema generator rejects recursive types, and ast.Declaration
// (Children) and ast.Block (nested declarations, branch blocks) are both
// recursive. Tool outputs therefore use these flattened mirrors, which model
// the single level of nesting the adapters actually produce.

// DeclarationInfo mirrors ast.Declaration with members flattened one level.
type DeclarationInfo struct {
	Name          string              `json:"name"`
	Kind          ast.DeclarationKind `json:"kind"`
	Visibility    ast.Visibility      `json:"visibility"`
	Span          ast.Span            `json:"span"`
	SignatureSpan *ast.Span           `json:"signatureSpan,omitempty"`
	BodySpan      *ast.Span           `json:"bodySpan,omitempty"`
	DocComment    *ast.Comment        `json:"docComment,omitempty"`
	Parameters    []ast.Parameter     `json:"parameters,omitempty"`
	ReturnType    string              `json:"returnType,omitempty"`
	Metadata      map[string]string   `json:"metadata,omitempty"`
	Children      []MemberInfo        `json:"children,omitempty"`
}

// MemberInfo is a nested declaration: a field, variant, method, or nested
// function. It carries no further children.
type MemberInfo struct {
	Name          string              `json:"name"`
	Kind          ast.DeclarationKind `json:"kind"`
	Visibility    ast.Visibility      `json:"visibility"`
	Span          ast.Span            `json:"span"`
	SignatureSpan *ast.Span           `json:"signatureSpan,omitempty"`
	BodySpan      *ast.Span           `json:"bodySpan,omitempty"`
	DocComment    *ast.Comment        `json:"docComment,omitempty"`
	Parameters    []ast.Parameter     `json:"parameters,omitempty"`
	ReturnType    string              `json:"returnType,omitempty"`
	Metadata      map[string]string   `json:"metadata,omitempty"`
}

// ControlFlowInfo is one control flow construct inside a body.
type ControlFlowInfo struct {
	Kind          ast.ControlFlowKind `json:"kind"`
	Span          ast.Span            `json:"span"`
	ConditionSpan *ast.Span           `json:"conditionSpan,omitempty"`
}

// BodyInfo mirrors ast.Block.
type BodyInfo struct {
	Span               ast.Span            `json:"span"`
	ControlFlow        []ControlFlowInfo   `json:"controlFlow,omitempty"`
	Calls              []ast.Call          `json:"calls,omitempty"`
	Comments           []ast.Comment       `json:"comments,omitempty"`
	UnknownRegions     []ast.UnknownRegion `json:"unknownRegions,omitempty"`
	NestedDeclarations []MemberInfo        `json:"nestedDeclarations,omitempty"`
}

// FileInfo mirrors ast.File.
type FileInfo struct {
	Path           string              `json:"path"`
	Language       ast.Language        `json:"language"`
	Span           ast.Span            `json:"span"`
	Declarations   []DeclarationInfo   `json:"declarations"`
	Imports        []ast.ImportLike    `json:"imports"`
	Comments       []ast.Comment       `json:"comments,omitempty"`
	UnknownRegions []ast.UnknownRegion `json:"unknownRegions,omitempty"`
}

func newDeclarationInfo(d *ast.Declaration) DeclarationInfo {
	info := DeclarationInfo{
		Name:          d.Name,
		Kind:          d.Kind,
		Visibility:    d.Visibility,
		Span:          d.Span,
		SignatureSpan: d.SignatureSpan,
		BodySpan:      d.BodySpan,
		DocComment:    d.DocComment,
		Parameters:    d.Parameters,
		ReturnType:    d.ReturnType,
		Metadata:      d.Metadata,
	}
	for i := range d.Children {
		info.Children = append(info.Children, newMemberInfo(&d.Children[i]))
	}
	return info
}

func newMemberInfo(d *ast.Declaration) MemberInfo {
	return MemberInfo{
		Name:          d.Name,
		Kind:          d.Kind,
		Visibility:    d.Visibility,
		Span:          d.Span,
		SignatureSpan: d.SignatureSpan,
		BodySpan:      d.BodySpan,
		DocComment:    d.DocComment,
		Parameters:    d.Parameters,
		ReturnType:    d.ReturnType,
		Metadata:      d.Metadata,
	}
}

func newBodyInfo(b *ast.Block) *BodyInfo {
	if b == nil {
		return nil
	}
	info := &BodyInfo{
		Span:           b.Span,
		Calls:          b.Calls,
		Comments:       b.Comments,
		UnknownRegions: b.UnknownRegions,
	}
	for i := range b.ControlFlow {
		cf := &b.ControlFlow[i]
		info.ControlFlow = append(info.ControlFlow, ControlFlowInfo{
			Kind:          cf.Kind,
			Span:          cf.Span,
			ConditionSpan: cf.ConditionSpan,
		})
	}
	for i := range b.NestedDeclarations {
		info.NestedDeclarations = append(info.NestedDeclarations, newMemberInfo(&b.NestedDeclarations[i]))
	}
	return info
}

func newFileInfo(f *ast.File) *FileInfo {
	info := &FileInfo{
		Path:           f.Path,
		Language:       f.Language,
		Span:           f.Span,
		Imports:        f.Imports,
		Comments:       f.Comments,
		UnknownRegions: f.UnknownRegions,
	}
	for i := range f.Declarations {
		info.Declarations = append(info.Declarations, newDeclarationInfo(&f.Declarations[i]))
	}
	return info
}
