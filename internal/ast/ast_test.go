package ast

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseAs parses source with the built-in registry and fails the test on
// error.
func parseAs(t *testing.T, source string, lang Language) *File {
	t.Helper()
	file, err := NewAdapterRegistry().Parse([]byte(source), lang)
	require.NoError(t, err, "parsing %s source", lang)
	require.NotNil(t, file)
	return file
}

// findDecl returns the first declaration whose Name matches, or nil.
func findDecl(decls []Declaration, name string) *Declaration {
	for i := range decls {
		if decls[i].Name == name {
			return &decls[i]
		}
	}
	return nil
}

// requireDecl fails the test when the named declaration is absent.
func requireDecl(t *testing.T, decls []Declaration, name string) *Declaration {
	t.Helper()
	d := findDecl(decls, name)
	require.NotNil(t, d, "declaration %q should exist", name)
	return d
}

// readFixture reads a test fixture file relative to the project root.
// Tests run from internal/ast/, so the relative path is ../../testdata/...
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

// assertSpanText checks the round-trip property: the declaration's span
// covers exactly the expected source text.
func assertSpanText(t *testing.T, source string, d *Declaration, want string) {
	t.Helper()
	require.LessOrEqual(t, d.Span.End, len(source), "span end inside source for %s", d.Name)
	require.Equal(t, want, source[d.Span.Start:d.Span.End], "span text for %s", d.Name)
}

// assertContainment checks the signature/body invariants when both spans are
// present.
func assertContainment(t *testing.T, d *Declaration) {
	t.Helper()
	require.NotNil(t, d.SignatureSpan, "%s should have a signature span", d.Name)
	require.NotNil(t, d.BodySpan, "%s should have a body span", d.Name)
	require.Equal(t, d.Span.Start, d.SignatureSpan.Start, "signature starts with the declaration for %s", d.Name)
	require.Equal(t, d.Span.End, d.BodySpan.End, "body ends the declaration for %s", d.Name)
	require.LessOrEqual(t, d.SignatureSpan.End, d.BodySpan.Start, "signature precedes body for %s", d.Name)
	require.True(t, d.Span.Contains(*d.SignatureSpan), "span encloses signature for %s", d.Name)
	require.True(t, d.Span.Contains(*d.BodySpan), "span encloses body for %s", d.Name)
}
