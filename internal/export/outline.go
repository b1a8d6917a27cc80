package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dusk-indust/codemap/internal/ast"
)

// WriteOutline renders a markdown outline of the index: per-language stats,
// then every file with its declarations and line ranges.
func WriteOutline(w io.Writer, index *ast.ProjectIndex) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Code map: %s\n\n", index.Root)
	fmt.Fprintf(&b, "%d files, %d declarations, %d imports",
		index.Stats.FilesProcessed, index.Stats.DeclarationsFound, index.Stats.ImportsFound)
	if index.Stats.UnknownRegions > 0 {
		fmt.Fprintf(&b, ", %d unknown regions", index.Stats.UnknownRegions)
	}
	b.WriteString("\n")

	if len(index.Stats.ByLanguage) > 0 {
		b.WriteString("\n| Language | Files | Declarations | Imports |\n")
		b.WriteString("|---|---|---|---|\n")
		langs := make([]string, 0, len(index.Stats.ByLanguage))
		for l := range index.Stats.ByLanguage {
			langs = append(langs, l)
		}
		sort.Strings(langs)
		for _, l := range langs {
			ls := index.Stats.ByLanguage[l]
			fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", l, ls.Files, ls.Declarations, ls.Imports)
		}
	}

	paths := make([]string, 0, len(index.Files))
	for p := range index.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		file := index.Files[path]
		fmt.Fprintf(&b, "\n## %s\n\n", path)

		for i := range file.Imports {
			imp := &file.Imports[i]
			fmt.Fprintf(&b, "- import %s (%s)\n", imp.Source, imp.Kind)
		}
		if len(file.Imports) > 0 && len(file.Declarations) > 0 {
			b.WriteString("\n")
		}

		for i := range file.Declarations {
			writeDeclaration(&b, &file.Declarations[i], 0)
		}

		for i := range file.UnknownRegions {
			r := &file.UnknownRegions[i]
			fmt.Fprintf(&b, "- !! %s at lines %d-%d\n", r.Reason, r.Span.StartLine, r.Span.EndLine)
		}
	}

	if len(index.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range index.Errors {
			marker := "error"
			if e.Recoverable {
				marker = "partial"
			}
			fmt.Fprintf(&b, "- %s: %s (%s)\n", e.Path, e.Message, marker)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDeclaration(b *strings.Builder, decl *ast.Declaration, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s- **%s** %s [%s] lines %d-%d\n",
		indent, decl.Kind, decl.Name, decl.Visibility, decl.Span.StartLine, decl.Span.EndLine)
	for i := range decl.Children {
		writeDeclaration(b, &decl.Children[i], depth+1)
	}
}
