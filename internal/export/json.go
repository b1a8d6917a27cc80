package export

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dusk-indust/codemap/internal/ast"
)

// IndexExport is the top-level JSON export structure for a project index.
// Files are emitted as a sorted list so output is stable across runs.
type IndexExport struct {
	Root       string           `json:"root"`
	ExportedAt string           `json:"exportedAt"`
	Stats      ast.IndexStats   `json:"stats"`
	Files      []FileExport     `json:"files"`
	Errors     []ast.IndexError `json:"errors,omitempty"`
}

// FileExport pairs a root-relative path with its parsed File.
type FileExport struct {
	Path string    `json:"path"`
	File *ast.File `json:"file"`
}

// BuildExport converts a ProjectIndex into its export form.
func BuildExport(index *ast.ProjectIndex) *IndexExport {
	out := &IndexExport{
		Root:       index.Root,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      index.Stats,
		Errors:     index.Errors,
	}

	paths := make([]string, 0, len(index.Files))
	for p := range index.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		out.Files = append(out.Files, FileExport{Path: p, File: index.Files[p]})
	}

	return out
}

// WriteJSON renders the index as indented JSON.
func WriteJSON(w io.Writer, index *ast.ProjectIndex) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildExport(index))
}

// ExportJSON writes the index to a file, creating or truncating it.
func ExportJSON(path string, index *ast.ProjectIndex) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteJSON(f, index); err != nil {
		return err
	}
	return f.Sync()
}
