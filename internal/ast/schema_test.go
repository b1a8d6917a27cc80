package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Span
// ---------------------------------------------------------------------------

func TestSpanContains(t *testing.T) {
	outer := Span{Start: 10, End: 100, StartLine: 2, EndLine: 12}
	inner := Span{Start: 20, End: 50, StartLine: 4, EndLine: 7}

	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.True(t, outer.Contains(outer), "a span contains itself")
}

func TestSpanContainsLine(t *testing.T) {
	s := Span{Start: 0, End: 10, StartLine: 3, EndLine: 8}

	assert.True(t, s.ContainsLine(3))
	assert.True(t, s.ContainsLine(8))
	assert.False(t, s.ContainsLine(2))
	assert.False(t, s.ContainsLine(9))
}

func TestSpanLenAndEmpty(t *testing.T) {
	assert.Equal(t, 5, Span{Start: 3, End: 8}.Len())
	assert.True(t, Span{Start: 4, End: 4}.IsEmpty())
	assert.False(t, Span{Start: 4, End: 5}.IsEmpty())
}

// ---------------------------------------------------------------------------
// Declaration
// ---------------------------------------------------------------------------

func TestDeclarationID(t *testing.T) {
	d := NewDeclaration("parse", KindFunction, Span{Start: 0, End: 20, StartLine: 14, EndLine: 18})
	assert.Equal(t, "function:parse:14", d.ID())
}

func TestDeclarationTotalCount(t *testing.T) {
	child := NewDeclaration("run", KindMethod, Span{StartLine: 2, EndLine: 3})
	grand := NewDeclaration("inner", KindFunction, Span{StartLine: 2, EndLine: 3})
	child.Children = append(child.Children, grand)

	parent := NewDeclaration("Worker", KindClass, Span{StartLine: 1, EndLine: 5})
	parent.Children = append(parent.Children, child)

	assert.Equal(t, 3, parent.TotalCount())
}

func TestFileTotalDeclarations(t *testing.T) {
	method := NewDeclaration("run", KindMethod, Span{})
	class := NewDeclaration("Worker", KindClass, Span{})
	class.Children = append(class.Children, method)

	f := NewFile("worker.py", LangPython)
	f.Declarations = append(f.Declarations, class, NewDeclaration("main", KindFunction, Span{}))

	assert.Equal(t, 3, f.TotalDeclarations())
}

// ---------------------------------------------------------------------------
// Language mapping
// ---------------------------------------------------------------------------

func TestLanguageFromExtension(t *testing.T) {
	cases := map[string]Language{
		"go":  LangGo,
		"py":  LangPython,
		"pyi": LangPython,
		"rs":  LangRust,
		"ts":  LangTypeScript,
		"mts": LangTypeScript,
		"tsx": LangTsx,
		"js":  LangJavaScript,
		"jsx": LangJavaScript,
	}
	for ext, want := range cases {
		assert.Equal(t, want, LanguageFromExtension(ext), "extension %q", ext)
	}
	assert.Equal(t, LangUnknown, LanguageFromExtension("md"))
	assert.Equal(t, LangUnknown, LanguageFromExtension(""))
}

func TestLanguageFromPath(t *testing.T) {
	assert.Equal(t, LangRust, LanguageFromPath("src/lib.rs"))
	assert.Equal(t, LangTypeScript, LanguageFromPath("/abs/app/service.ts"))
	assert.Equal(t, LangUnknown, LanguageFromPath("Makefile"))
}

func TestLanguageDisplayName(t *testing.T) {
	require.Equal(t, "Go", LangGo.DisplayName())
	require.Equal(t, "Python", LangPython.DisplayName())
	require.Equal(t, "TSX", LangTsx.DisplayName())
}
