package ast

import "fmt"

// --- Enums ---

// DeclarationKind classifies a normalized declaration independent of the
// grammar that produced it.
type DeclarationKind string

const (
	KindFunction    DeclarationKind = "function"
	KindMethod      DeclarationKind = "method"
	KindConstructor DeclarationKind = "constructor"
	KindClass       DeclarationKind = "class"
	KindStruct      DeclarationKind = "struct"
	KindInterface   DeclarationKind = "interface"
	KindTrait       DeclarationKind = "trait"
	KindEnum        DeclarationKind = "enum"
	KindType        DeclarationKind = "type"
	KindVariable    DeclarationKind = "variable"
	KindConstant    DeclarationKind = "constant"
	KindField       DeclarationKind = "field"
	KindModule      DeclarationKind = "module"
	KindMacro       DeclarationKind = "macro"
	KindImpl        DeclarationKind = "impl"
)

// Visibility is the normalized access level of a declaration.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
	VisibilityInternal  Visibility = "internal"
	VisibilityUnknown   Visibility = "unknown"
)

// ImportKind classifies the shape of an import-like statement.
type ImportKind string

const (
	ImportModule     ImportKind = "module"
	ImportNamed      ImportKind = "named"
	ImportWildcard   ImportKind = "wildcard"
	ImportReExport   ImportKind = "reexport"
	ImportSideEffect ImportKind = "sideeffect"
)

// CommentKind distinguishes line, block, and documentation comments.
type CommentKind string

const (
	CommentLine  CommentKind = "line"
	CommentBlock CommentKind = "block"
	CommentDoc   CommentKind = "doc"
)

// ControlFlowKind classifies a control flow construct.
type ControlFlowKind string

const (
	FlowIf      ControlFlowKind = "if"
	FlowFor     ControlFlowKind = "for"
	FlowWhile   ControlFlowKind = "while"
	FlowLoop    ControlFlowKind = "loop"
	FlowSwitch  ControlFlowKind = "switch"
	FlowMatch   ControlFlowKind = "match"
	FlowTry     ControlFlowKind = "try"
	FlowCatch   ControlFlowKind = "catch"
	FlowFinally ControlFlowKind = "finally"
	FlowWith    ControlFlowKind = "with"
	FlowReturn  ControlFlowKind = "return"
)

// --- Models ---

// Span is a half-open byte range over source text with 1-indexed lines and
// 0-indexed columns.
type Span struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	StartLine   int `json:"startLine"`
	EndLine     int `json:"endLine"`
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`
}

// Contains reports whether other lies fully inside this span.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && s.End >= other.End
}

// ContainsLine reports whether the 1-indexed line falls within the span.
func (s Span) ContainsLine(line int) bool {
	return line >= s.StartLine && line <= s.EndLine
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Parameter is one formal parameter of a function-like declaration.
type Parameter struct {
	Name           string `json:"name"`
	TypeAnnotation string `json:"typeAnnotation,omitempty"`
	DefaultValue   string `json:"defaultValue,omitempty"`
	Span           Span   `json:"span"`
}

// Comment is a cleaned source comment.
type Comment struct {
	Text       string      `json:"text"`
	Kind       CommentKind `json:"kind"`
	Span       Span        `json:"span"`
	AttachedTo string      `json:"attachedTo,omitempty"`
}

// Declaration is a normalized named construct. Nested declarations are owned
// by value in Children, so the reachable graph is always a tree.
type Declaration struct {
	Name          string            `json:"name"`
	Kind          DeclarationKind   `json:"kind"`
	Visibility    Visibility        `json:"visibility"`
	Span          Span              `json:"span"`
	SignatureSpan *Span             `json:"signatureSpan,omitempty"`
	BodySpan      *Span             `json:"bodySpan,omitempty"`
	DocComment    *Comment          `json:"docComment,omitempty"`
	Parameters    []Parameter       `json:"parameters,omitempty"`
	ReturnType    string            `json:"returnType,omitempty"`
	Children      []Declaration     `json:"children,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewDeclaration creates a declaration with unknown visibility and an empty
// metadata map.
func NewDeclaration(name string, kind DeclarationKind, span Span) Declaration {
	return Declaration{
		Name:       name,
		Kind:       kind,
		Visibility: VisibilityUnknown,
		Span:       span,
		Metadata:   map[string]string{},
	}
}

// ID returns the lookup identity of the declaration. It is recomputed per
// call and never persisted as a handle.
func (d *Declaration) ID() string {
	return fmt.Sprintf("%s:%s:%d", d.Kind, d.Name, d.Span.StartLine)
}

// TotalCount counts this declaration plus all nested children.
func (d *Declaration) TotalCount() int {
	n := 1
	for i := range d.Children {
		n += d.Children[i].TotalCount()
	}
	return n
}

// ImportLike is any statement that brings names or modules into scope.
type ImportLike struct {
	Source   string     `json:"source"`
	Kind     ImportKind `json:"kind"`
	Items    []string   `json:"items,omitempty"`
	Alias    string     `json:"alias,omitempty"`
	TypeOnly bool       `json:"typeOnly,omitempty"`
	Span     Span       `json:"span"`
}

// ControlFlow is one control flow construct found inside a body.
type ControlFlow struct {
	Kind          ControlFlowKind `json:"kind"`
	Span          Span            `json:"span"`
	ConditionSpan *Span           `json:"conditionSpan,omitempty"`
	Branches      []Block         `json:"branches,omitempty"`
}

// Call is a direct function or method invocation.
type Call struct {
	Callee        string `json:"callee"`
	Span          Span   `json:"span"`
	ArgumentCount int    `json:"argumentCount"`
	IsMethod      bool   `json:"isMethod"`
}

// Block describes the interior of a declaration body.
type Block struct {
	Span               Span            `json:"span"`
	ControlFlow        []ControlFlow   `json:"controlFlow,omitempty"`
	Calls              []Call          `json:"calls,omitempty"`
	Comments           []Comment       `json:"comments,omitempty"`
	UnknownRegions     []UnknownRegion `json:"unknownRegions,omitempty"`
	NestedDeclarations []Declaration   `json:"nestedDeclarations,omitempty"`
}

// UnknownRegion is a byte range extraction could not classify, usually a
// parse error.
type UnknownRegion struct {
	Span     Span   `json:"span"`
	NodeKind string `json:"nodeKind"`
	Reason   string `json:"reason"`
	RawText  string `json:"rawText"`
}

// File is the normalized result of parsing one source file. It exclusively
// owns everything reachable from it and is immutable after construction.
type File struct {
	Path           string          `json:"path"`
	Language       Language        `json:"language"`
	Span           Span            `json:"span"`
	Declarations   []Declaration   `json:"declarations"`
	Imports        []ImportLike    `json:"imports"`
	Comments       []Comment       `json:"comments,omitempty"`
	UnknownRegions []UnknownRegion `json:"unknownRegions,omitempty"`
}

// NewFile creates an empty File for the given path and language.
func NewFile(path string, lang Language) *File {
	return &File{Path: path, Language: lang}
}

// TotalDeclarations counts all declarations in the file, including nested
// children.
func (f *File) TotalDeclarations() int {
	n := 0
	for i := range f.Declarations {
		n += f.Declarations[i].TotalCount()
	}
	return n
}
