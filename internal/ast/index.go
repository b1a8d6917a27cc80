package ast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// maxFileSize is the per-file byte ceiling; larger files are skipped, not
// failed.
const maxFileSize = 1_000_000

// denyDirs are directory names never descended into during a sweep.
var denyDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
	".git":         true,
	"vendor":       true,
}

// TreeSitterProvider implements Provider on top of an AdapterRegistry.
type TreeSitterProvider struct {
	registry *AdapterRegistry
}

// NewTreeSitterProvider creates a provider with all built-in adapters.
func NewTreeSitterProvider() *TreeSitterProvider {
	return &TreeSitterProvider{registry: NewAdapterRegistry()}
}

// NewTreeSitterProviderWithRegistry creates a provider over a custom
// registry.
func NewTreeSitterProviderWithRegistry(registry *AdapterRegistry) *TreeSitterProvider {
	return &TreeSitterProvider{registry: registry}
}

// Registry returns the adapter registry.
func (p *TreeSitterProvider) Registry() *AdapterRegistry {
	return p.registry
}

// ParseFile parses a single in-memory source.
func (p *TreeSitterProvider) ParseFile(source []byte, lang Language) (*File, error) {
	return p.registry.Parse(source, lang)
}

// SupportedLanguages returns the registered language ids in sorted order.
func (p *TreeSitterProvider) SupportedLanguages() []Language {
	return p.registry.SupportedLanguages()
}

// fileResult is the outcome of processing one enumerated file.
type fileResult struct {
	path    string // absolute
	file    *File  // nil when skipped
	skipped bool
	err     error
}

// IndexProject sweeps root, parses every supported file, and aggregates the
// results. Per-file failures are recorded and never abort the sweep; a
// recoverable failure still contributes its partial File.
func (p *TreeSitterProvider) IndexProject(ctx context.Context, root string, opts IndexOptions) (*ProjectIndex, error) {
	start := time.Now()
	index := NewProjectIndex(root)

	paths, err := p.collectFiles(root, opts)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(paths))
	if opts.Workers > 1 {
		// Parallel parses write into position-indexed slots so that
		// folding below sees the same order as the sequential path.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, path := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = p.processFile(path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = p.processFile(path)
		}
	}

	stats := IndexStats{ByLanguage: map[string]LanguageStats{}}
	for _, res := range results {
		if opts.MaxFiles > 0 && stats.FilesProcessed >= opts.MaxFiles {
			break
		}

		relPath, relErr := filepath.Rel(root, res.path)
		if relErr != nil {
			relPath = res.path
		}

		switch {
		case res.err != nil:
			var parseErr *ParseError
			if errors.As(res.err, &parseErr) && parseErr.HasPartial() {
				index.Errors = append(index.Errors, IndexError{
					Path:        res.path,
					Message:     res.err.Error(),
					Recoverable: true,
				})
				partial := parseErr.Partial
				partial.Path = res.path
				index.Files[relPath] = partial
			} else {
				index.Errors = append(index.Errors, IndexError{
					Path:    res.path,
					Message: res.err.Error(),
				})
			}
		case res.skipped:
			stats.FilesSkipped++
		default:
			stats.FilesProcessed++
			stats.DeclarationsFound += res.file.TotalDeclarations()
			stats.ImportsFound += len(res.file.Imports)
			stats.UnknownRegions += len(res.file.UnknownRegions)

			lang := res.file.Language.DisplayName()
			ls := stats.ByLanguage[lang]
			ls.Files++
			ls.Declarations += res.file.TotalDeclarations()
			ls.Imports += len(res.file.Imports)
			stats.ByLanguage[lang] = ls

			index.Files[relPath] = res.file
		}
	}

	stats.ParseTimeMs = time.Since(start).Milliseconds()
	index.Stats = stats

	return index, nil
}

// collectFiles enumerates candidate files under root: dot entries and the
// deny-list are skipped, include/exclude substring filters applied, and the
// result sorted lexicographically for determinism.
func (p *TreeSitterProvider) collectFiles(root string, opts IndexOptions) ([]string, error) {
	var files []string

	extraDeny := map[string]bool{}
	for _, d := range opts.ExcludeDirs {
		extraDeny[d] = true
	}
	wantLang := map[Language]bool{}
	for _, l := range opts.Languages {
		wantLang[l] = true
	}

	var visit func(dir string) error
	visit = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return &IOError{Path: dir, Message: err.Error()}
		}

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			path := filepath.Join(dir, name)

			isDir := entry.IsDir()
			if entry.Type()&os.ModeSymlink != 0 {
				// ReadDir reports the link itself, never the target, so a
				// symlinked directory must be resolved by hand.
				if !opts.FollowSymlinks {
					continue
				}
				info, err := os.Stat(path)
				if err != nil {
					continue
				}
				isDir = info.IsDir()
			}

			if isDir {
				if denyDirs[name] || extraDeny[name] {
					continue
				}
				if err := visit(path); err != nil {
					return err
				}
				continue
			}

			lang := LanguageFromPath(path)
			if !p.registry.Supports(lang) {
				continue
			}
			if len(wantLang) > 0 && !wantLang[lang] {
				continue
			}
			if len(opts.IncludePatterns) > 0 && !matchesAny(path, opts.IncludePatterns) {
				continue
			}
			if matchesAny(path, opts.ExcludePatterns) {
				continue
			}

			files = append(files, path)
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matchesAny does substring matching after trimming glob stars, which covers
// the common "*_test*"-style patterns without a full glob engine.
func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		needle := strings.Trim(p, "*")
		if needle != "" && strings.Contains(path, needle) {
			return true
		}
	}
	return false
}

// processFile reads and parses one file. Binary content and oversized files
// are silent skips, not errors.
func (p *TreeSitterProvider) processFile(path string) fileResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: &IOError{Path: path, Message: err.Error()}}
	}

	if len(source) > maxFileSize {
		return fileResult{path: path, skipped: true}
	}
	if !utf8.Valid(source) {
		// Not a text source file.
		return fileResult{path: path, skipped: true}
	}

	lang := LanguageFromPath(path)
	if !p.registry.Supports(lang) {
		return fileResult{path: path, skipped: true}
	}

	file, err := p.registry.Parse(source, lang)
	if err != nil {
		return fileResult{path: path, err: err}
	}
	file.Path = path

	return fileResult{path: path, file: file}
}

func sortedKeys(m map[string]*File) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
