package ast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProjectFile creates a file under root, making parent directories as
// needed.
func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const (
	pySource = "def handler():\n    return 1\n"
	rsSource = "pub fn handle() -> u32 {\n    1\n}\n"
	goSource = "package demo\n\nfunc Handle() int {\n\treturn 1\n}\n"
)

// ---------------------------------------------------------------------------
// IndexProject
// ---------------------------------------------------------------------------

func TestIndexProjectMixedLanguages(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.py", pySource)
	writeProjectFile(t, root, "b.rs", rsSource)
	writeProjectFile(t, root, "sub/c.go", goSource)
	writeProjectFile(t, root, "notes.md", "# not source\n")
	writeProjectFile(t, root, "node_modules/dep.ts", "export const x = 1;\n")
	writeProjectFile(t, root, ".hidden.py", pySource)

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, index.Stats.FilesProcessed)
	assert.Empty(t, index.Errors)

	require.Contains(t, index.Files, "a.py")
	require.Contains(t, index.Files, "b.rs")
	require.Contains(t, index.Files, filepath.Join("sub", "c.go"))
	assert.NotContains(t, index.Files, "notes.md")

	assert.Equal(t, 1, index.Stats.ByLanguage["Python"].Files)
	assert.Equal(t, 1, index.Stats.ByLanguage["Rust"].Files)
	assert.Equal(t, 1, index.Stats.ByLanguage["Go"].Files)
	assert.Equal(t, 3, index.Stats.DeclarationsFound)
}

func TestIndexProjectOversizedFileSkipped(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "small.py", pySource)
	writeProjectFile(t, root, "big.py", "# "+strings.Repeat("x", maxFileSize)+"\n")

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, index.Stats.FilesProcessed)
	assert.Equal(t, 1, index.Stats.FilesSkipped)
	assert.Contains(t, index.Files, "small.py")
	assert.NotContains(t, index.Files, "big.py")
	assert.Empty(t, index.Errors, "oversized files are skips, not errors")
}

func TestIndexProjectBinaryContentSkipped(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "ok.py", pySource)
	writeProjectFile(t, root, "blob.py", "\xff\xfe\x00broken")

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, index.Stats.FilesProcessed)
	assert.Equal(t, 1, index.Stats.FilesSkipped)
	assert.Empty(t, index.Errors, "invalid encoding means not a source file")
}

func TestIndexProjectBrokenFileStillIndexed(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "ok.py", pySource)
	writeProjectFile(t, root, "broken.py", "def broken(:\n    pass\n")

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	// Malformed sources still parse; the damage shows up as unknown regions.
	assert.Equal(t, 2, index.Stats.FilesProcessed)
	assert.Greater(t, index.Stats.UnknownRegions, 0)
	require.Contains(t, index.Files, "broken.py")
	assert.NotEmpty(t, index.Files["broken.py"].UnknownRegions)
}

func TestIndexProjectMaxFiles(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.py", pySource)
	writeProjectFile(t, root, "b.py", pySource)
	writeProjectFile(t, root, "c.py", pySource)

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{MaxFiles: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, index.Stats.FilesProcessed)
	assert.Len(t, index.Files, 2)
}

func TestIndexProjectIncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "service.py", pySource)
	writeProjectFile(t, root, "service_test.py", pySource)
	writeProjectFile(t, root, "util.py", pySource)

	provider := NewTreeSitterProvider()

	index, err := provider.IndexProject(context.Background(), root, IndexOptions{
		IncludePatterns: []string{"*service*"},
		ExcludePatterns: []string{"*_test*"},
	})
	require.NoError(t, err)

	assert.Contains(t, index.Files, "service.py")
	assert.NotContains(t, index.Files, "service_test.py")
	assert.NotContains(t, index.Files, "util.py")
	assert.Equal(t, 1, index.Stats.FilesProcessed)
}

func TestIndexProjectExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "main.py", pySource)
	writeProjectFile(t, root, "generated/gen.py", pySource)
	writeProjectFile(t, root, "examples/demo.py", pySource)

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{
		ExcludeDirs: []string{"generated", "examples"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, index.Stats.FilesProcessed)
	assert.Contains(t, index.Files, "main.py")
	assert.NotContains(t, index.Files, filepath.Join("generated", "gen.py"))
	assert.NotContains(t, index.Files, filepath.Join("examples", "demo.py"))
}

func TestIndexProjectLanguageFilter(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.py", pySource)
	writeProjectFile(t, root, "b.rs", rsSource)
	writeProjectFile(t, root, "c.go", goSource)

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{
		Languages: []Language{LangPython, LangGo},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, index.Stats.FilesProcessed)
	assert.Contains(t, index.Files, "a.py")
	assert.Contains(t, index.Files, "c.go")
	assert.NotContains(t, index.Files, "b.rs")
}

func TestIndexProjectFollowSymlinks(t *testing.T) {
	real := t.TempDir()
	writeProjectFile(t, real, "mod.py", pySource)

	root := t.TempDir()
	writeProjectFile(t, root, "top.py", pySource)
	require.NoError(t, os.Symlink(real, filepath.Join(root, "linked")))

	provider := NewTreeSitterProvider()

	followed, err := provider.IndexProject(context.Background(), root, IndexOptions{FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, 2, followed.Stats.FilesProcessed)
	assert.Contains(t, followed.Files, filepath.Join("linked", "mod.py"))

	unfollowed, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, unfollowed.Stats.FilesProcessed, "symlinks are skipped by default")
	assert.NotContains(t, unfollowed.Files, filepath.Join("linked", "mod.py"))
}

func TestIndexProjectParallelMatchesSequential(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.py", pySource)
	writeProjectFile(t, root, "b.rs", rsSource)
	writeProjectFile(t, root, "c.go", goSource)
	writeProjectFile(t, root, "d/e.py", pySource)
	writeProjectFile(t, root, "d/f.go", goSource)

	provider := NewTreeSitterProvider()

	sequential, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)
	parallel, err := provider.IndexProject(context.Background(), root, IndexOptions{Workers: 4})
	require.NoError(t, err)

	// Timing aside, parallel sweeps fold to the identical index.
	sequential.Stats.ParseTimeMs = 0
	parallel.Stats.ParseTimeMs = 0
	assert.Equal(t, sequential.Files, parallel.Files)
	assert.Equal(t, sequential.Stats, parallel.Stats)
	assert.Equal(t, sequential.Errors, parallel.Errors)
}

func TestIndexProjectMissingRoot(t *testing.T) {
	provider := NewTreeSitterProvider()

	_, err := provider.IndexProject(context.Background(), filepath.Join(t.TempDir(), "absent"), IndexOptions{})
	require.Error(t, err)

	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestIndexProjectCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.py", pySource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := NewTreeSitterProvider()
	_, err := provider.IndexProject(ctx, root, IndexOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// ProjectIndex queries
// ---------------------------------------------------------------------------

func TestProjectIndexAllDeclarationsSorted(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "z.py", "def last():\n    pass\n")
	writeProjectFile(t, root, "a.py", "def first():\n    pass\n")

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	all := index.AllDeclarations()
	require.Len(t, all, 2)
	assert.Equal(t, "a.py", all[0].Path)
	assert.Equal(t, "first", all[0].Declaration.Name)
	assert.Equal(t, "z.py", all[1].Path)
}

func TestProjectIndexSortedPaths(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "z.py", pySource)
	writeProjectFile(t, root, "a.py", pySource)
	writeProjectFile(t, root, "m.py", pySource)

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py", "m.py", "z.py"}, index.SortedPaths())
}

func TestProjectIndexFindByName(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "one.py", "def shared():\n    pass\n")
	writeProjectFile(t, root, "two.py", "def shared():\n    pass\n\ndef other():\n    pass\n")

	provider := NewTreeSitterProvider()
	index, err := provider.IndexProject(context.Background(), root, IndexOptions{})
	require.NoError(t, err)

	found := index.FindByName("shared")
	require.Len(t, found, 2)
	assert.Equal(t, "one.py", found[0].Path)
	assert.Equal(t, "two.py", found[1].Path)

	assert.Empty(t, index.FindByName("missing"))
}
