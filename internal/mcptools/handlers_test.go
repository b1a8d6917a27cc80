package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codemap/internal/ast"
)

func newTestService() *AstService {
	return NewAstService(ast.NewTreeSitterProvider())
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------------------------------------------------------------------------
// index_project
// ---------------------------------------------------------------------------

func TestIndexProjectTool(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "main.py", "import os\n\ndef main():\n    pass\n")

	svc := newTestService()
	_, out, err := svc.IndexProject(context.Background(), nil, IndexProjectInput{Root: root})
	require.NoError(t, err)

	assert.Equal(t, root, out.Root)
	assert.Equal(t, 1, out.FileCount)
	assert.Equal(t, 1, out.Stats.FilesProcessed)
	assert.Equal(t, 1, out.Stats.DeclarationsFound)
	assert.Empty(t, out.Errors)
}

func TestIndexProjectToolValidation(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.IndexProject(context.Background(), nil, IndexProjectInput{})
	assert.ErrorContains(t, err, "root is required")

	_, _, err = svc.IndexProject(context.Background(), nil, IndexProjectInput{Root: "/definitely/not/there"})
	assert.ErrorContains(t, err, "cannot access root")

	file := writeSource(t, t.TempDir(), "f.py", "x = 1\n")
	_, _, err = svc.IndexProject(context.Background(), nil, IndexProjectInput{Root: file})
	assert.ErrorContains(t, err, "not a directory")
}

// ---------------------------------------------------------------------------
// zoom_symbol
// ---------------------------------------------------------------------------

func TestZoomSymbolTool(t *testing.T) {
	path := writeSource(t, t.TempDir(), "calc.go", "package calc\n\nfunc Double(n int) int {\n\treturn n * 2\n}\n")

	svc := newTestService()
	_, out, err := svc.ZoomSymbol(context.Background(), nil, ZoomSymbolInput{
		FilePath: path,
		Symbol:   "Double",
	})
	require.NoError(t, err)

	assert.Equal(t, path, out.FilePath)
	assert.Equal(t, "Double", out.Symbol.Name)
	assert.Equal(t, ast.KindFunction, out.Symbol.Kind)
	require.NotNil(t, out.Body)
	assert.NotEmpty(t, out.Body.ControlFlow)
	assert.NotEmpty(t, out.SourceText)
}

func TestZoomSymbolToolSkipBody(t *testing.T) {
	path := writeSource(t, t.TempDir(), "calc.go", "package calc\n\nfunc Double(n int) int {\n\treturn n * 2\n}\n")

	svc := newTestService()
	_, out, err := svc.ZoomSymbol(context.Background(), nil, ZoomSymbolInput{
		FilePath: path,
		Symbol:   "Double",
		SkipBody: true,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Body)
}

func TestZoomSymbolToolValidation(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.ZoomSymbol(context.Background(), nil, ZoomSymbolInput{Symbol: "x"})
	assert.ErrorContains(t, err, "filePath is required")

	_, _, err = svc.ZoomSymbol(context.Background(), nil, ZoomSymbolInput{FilePath: "f.py"})
	assert.ErrorContains(t, err, "symbol is required")
}

// ---------------------------------------------------------------------------
// parse_file
// ---------------------------------------------------------------------------

func TestParseFileTool(t *testing.T) {
	path := writeSource(t, t.TempDir(), "model.rs", "pub struct Model {\n    pub id: u64,\n}\n")

	svc := newTestService()
	_, out, err := svc.ParseFile(context.Background(), nil, ParseFileInput{FilePath: path})
	require.NoError(t, err)

	require.NotNil(t, out.File)
	assert.Equal(t, path, out.File.Path)
	assert.Equal(t, ast.LangRust, out.File.Language)
	require.Len(t, out.File.Declarations, 1)
	assert.Equal(t, "Model", out.File.Declarations[0].Name)

	// Members come through the flattened output shape.
	require.Len(t, out.File.Declarations[0].Children, 1)
	assert.Equal(t, "id", out.File.Declarations[0].Children[0].Name)
	assert.Equal(t, ast.KindField, out.File.Declarations[0].Children[0].Kind)
}

func TestParseFileToolValidation(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.ParseFile(context.Background(), nil, ParseFileInput{})
	assert.ErrorContains(t, err, "filePath is required")

	_, _, err = svc.ParseFile(context.Background(), nil, ParseFileInput{FilePath: "/no/such/file.py"})
	assert.ErrorContains(t, err, "read file")

	binary := writeSource(t, t.TempDir(), "img.py", "\xff\xfe")
	_, _, err = svc.ParseFile(context.Background(), nil, ParseFileInput{FilePath: binary})
	assert.ErrorContains(t, err, "not a text file")
}

// ---------------------------------------------------------------------------
// list_languages
// ---------------------------------------------------------------------------

func TestListLanguagesTool(t *testing.T) {
	svc := newTestService()

	_, out, err := svc.ListLanguages(context.Background(), nil, ListLanguagesInput{})
	require.NoError(t, err)
	assert.Equal(t, []ast.Language{
		ast.LangGo, ast.LangPython, ast.LangRust, ast.LangTsx, ast.LangTypeScript,
	}, out.Languages)
}

// ---------------------------------------------------------------------------
// Server wiring
// ---------------------------------------------------------------------------

func TestNewAstMCPServer(t *testing.T) {
	// AddTool generates JSON schemas for every input and output type and
	// panics on any recursive shape, so registration itself is the test.
	var server any
	require.NotPanics(t, func() {
		server = NewAstMCPServer(newTestService())
	})
	assert.NotNil(t, server)
}
