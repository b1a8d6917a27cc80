package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codemap/internal/ast"
)

// buildIndex indexes a small throwaway project.
func buildIndex(t *testing.T) *ast.ProjectIndex {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.py"), []byte("def beta():\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("import os\n\ndef alpha():\n    pass\n"), 0o644))

	index, err := ast.NewTreeSitterProvider().IndexProject(context.Background(), root, ast.IndexOptions{})
	require.NoError(t, err)
	return index
}

func TestBuildExportSortsFiles(t *testing.T) {
	index := buildIndex(t)

	out := BuildExport(index)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "a.py", out.Files[0].Path)
	assert.Equal(t, "b.py", out.Files[1].Path)
	assert.NotEmpty(t, out.ExportedAt)
	assert.Equal(t, index.Stats, out.Stats)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	index := buildIndex(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, index))

	var decoded IndexExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, index.Root, decoded.Root)
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, "alpha", decoded.Files[0].File.Declarations[0].Name)
}

func TestExportJSONWritesFile(t *testing.T) {
	index := buildIndex(t)
	path := filepath.Join(t.TempDir(), "index.json")

	require.NoError(t, ExportJSON(path, index))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestWriteOutline(t *testing.T) {
	index := buildIndex(t)

	var buf bytes.Buffer
	require.NoError(t, WriteOutline(&buf, index))
	out := buf.String()

	assert.Contains(t, out, "# Code map: ")
	assert.Contains(t, out, "2 files, 2 declarations, 1 imports")
	assert.Contains(t, out, "| Python | 2 | 2 | 1 |")
	assert.Contains(t, out, "## a.py")
	assert.Contains(t, out, "- import os (module)")
	assert.Contains(t, out, "- **function** alpha [public]")
	assert.Contains(t, out, "## b.py")
}

func TestWriteOutlineReportsErrors(t *testing.T) {
	index := ast.NewProjectIndex("/tmp/p")
	index.Errors = append(index.Errors,
		ast.IndexError{Path: "bad.py", Message: "unreadable"},
		ast.IndexError{Path: "half.py", Message: "partial parse", Recoverable: true},
	)

	var buf bytes.Buffer
	require.NoError(t, WriteOutline(&buf, index))
	out := buf.String()

	assert.Contains(t, out, "## Errors")
	assert.Contains(t, out, "- bad.py: unreadable (error)")
	assert.Contains(t, out, "- half.py: partial parse (partial)")
}
