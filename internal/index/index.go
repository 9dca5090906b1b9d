// Package index maintains the cross-file symbol index described in
// spec.md §4.4: by_path, by_file, by_kind and file_deps, kept consistent
// under addFile/removeFile, guarded the way internal/registry guards its
// provider maps.
package index

import (
	"sort"
	"sync"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/symtab"
)

// Edge is one resolved or unresolved @depends-on reference.
type Edge struct {
	From     string
	To       string // joined reference path, resolved or not
	FileURI  string
	Location core.Location
	Resolved bool
}

// FileEntry is what addFile stores per file: its symbol table and the
// edges whose source symbol lives in that file.
type FileEntry struct {
	Table *symtab.Table
	Edges []Edge
}

// Index is the workspace-wide symbol index. Zero value is unusable; use
// New.
type Index struct {
	mu sync.RWMutex

	byFile map[string]*FileEntry
	byPath map[string][]*core.Symbol
	byKind map[core.SymbolKind][]*core.Symbol

	// fileDeps[uri] is the set of file URIs uri depends on, derived from
	// resolving uri's outgoing edges to their target symbol's file.
	fileDeps map[string]map[string]struct{}
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		byFile:   map[string]*FileEntry{},
		byPath:   map[string][]*core.Symbol{},
		byKind:   map[core.SymbolKind][]*core.Symbol{},
		fileDeps: map[string]map[string]struct{}{},
	}
}

// AddFile atomically replaces uri's prior entry (if any) and recomputes
// by_path, by_kind, by_file, and the outgoing portion of file_deps.
func (ix *Index) AddFile(uri string, tbl *symtab.Table) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeFileLocked(uri)

	entry := &FileEntry{Table: tbl}
	for _, sym := range tbl.All() {
		ix.byPath[sym.Path] = append(ix.byPath[sym.Path], sym)
		ix.byKind[sym.Kind] = append(ix.byKind[sym.Kind], sym)

		for _, ref := range sym.DependsOn {
			edge := Edge{From: sym.Path, To: ref.Path(), FileURI: uri, Location: ref.Location}
			if targets := ix.byPath[ref.Path()]; len(targets) > 0 {
				edge.Resolved = true
			}
			entry.Edges = append(entry.Edges, edge)
		}
	}
	ix.byFile[uri] = entry
	ix.reindexSortLocked()
	ix.recomputeFileDepsLocked(uri)
}

// RemoveFile erases uri's slice from every map.
func (ix *Index) RemoveFile(uri string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeFileLocked(uri)
	ix.reindexSortLocked()
}

func (ix *Index) removeFileLocked(uri string) {
	old, ok := ix.byFile[uri]
	if !ok {
		delete(ix.fileDeps, uri)
		return
	}
	for _, sym := range old.Table.All() {
		ix.byPath[sym.Path] = removeSymbol(ix.byPath[sym.Path], sym)
		ix.byKind[sym.Kind] = removeSymbol(ix.byKind[sym.Kind], sym)
		if len(ix.byPath[sym.Path]) == 0 {
			delete(ix.byPath, sym.Path)
		}
		if len(ix.byKind[sym.Kind]) == 0 {
			delete(ix.byKind, sym.Kind)
		}
	}
	delete(ix.byFile, uri)
	delete(ix.fileDeps, uri)
}

func removeSymbol(list []*core.Symbol, target *core.Symbol) []*core.Symbol {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// reindexSortLocked re-derives edge.Resolved for every file (a removal or
// addition can change whether other files' references now resolve) and
// sorts by_kind by path ascending (spec.md §4.4 tie-breaking).
func (ix *Index) reindexSortLocked() {
	for uri, entry := range ix.byFile {
		for i := range entry.Edges {
			_, ok := ix.byPath[entry.Edges[i].To]
			entry.Edges[i].Resolved = ok
		}
		ix.recomputeFileDepsLocked(uri)
	}
	for kind := range ix.byKind {
		syms := ix.byKind[kind]
		sort.Slice(syms, func(i, j int) bool { return syms[i].Path < syms[j].Path })
	}
}

func (ix *Index) recomputeFileDepsLocked(uri string) {
	entry, ok := ix.byFile[uri]
	if !ok {
		delete(ix.fileDeps, uri)
		return
	}
	deps := map[string]struct{}{}
	for _, e := range entry.Edges {
		if !e.Resolved {
			continue
		}
		for _, target := range ix.byPath[e.To] {
			if target.FileURI != uri {
				deps[target.FileURI] = struct{}{}
			}
		}
	}
	ix.fileDeps[uri] = deps
}

// Lookup returns the defining symbols for an exact path, and whether the
// path is a conflict (defined by more than one symbol).
func (ix *Index) Lookup(path string) (syms []*core.Symbol, conflict bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	syms = ix.byPath[path]
	return syms, len(syms) > 1
}

// ByKind returns every indexed symbol of the given kind, sorted by path.
func (ix *Index) ByKind(kind core.SymbolKind) []*core.Symbol {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]*core.Symbol(nil), ix.byKind[kind]...)
}

// Files returns every indexed file URI.
func (ix *Index) Files() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.byFile))
	for uri := range ix.byFile {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// File returns the FileEntry for uri, or nil.
func (ix *Index) File(uri string) *FileEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.byFile[uri]
}

// FileDeps returns the set of file URIs uri depends on.
func (ix *Index) FileDeps(uri string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	deps := ix.fileDeps[uri]
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ResolveResult is the outcome of ResolveReference.
type ResolveResult struct {
	// Exact holds the defining symbols when path resolves exactly.
	// len > 1 signals ambiguity/conflict.
	Exact []*core.Symbol
	// PartialPrefix is the longest dotted prefix of the requested path
	// that does resolve, when Exact is empty.
	PartialPrefix string
	// PartialSymbols are the symbols defining PartialPrefix.
	PartialSymbols []*core.Symbol
	// Children are the direct children one level under PartialPrefix.
	Children []*core.Symbol
}

// ResolveReference implements spec.md §4.4's resolution rule: exact
// lookup on the joined path; on miss, the longest dot-prefix that exists
// plus its direct children. preferFileURI, when non-empty, is used to
// break exact-match ambiguity in favor of a same-file symbol.
func (ix *Index) ResolveReference(path string, preferFileURI string) ResolveResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if syms, ok := ix.byPath[path]; ok && len(syms) > 0 {
		return ResolveResult{Exact: preferSameFile(syms, preferFileURI)}
	}

	parts := core.SplitPath(path)
	for n := len(parts) - 1; n > 0; n-- {
		prefix := core.JoinPath(parts[:n]...)
		syms, ok := ix.byPath[prefix]
		if !ok || len(syms) == 0 {
			continue
		}
		return ResolveResult{
			PartialPrefix:  prefix,
			PartialSymbols: syms,
			Children:       ix.directChildrenLocked(prefix),
		}
	}
	return ResolveResult{}
}

func preferSameFile(syms []*core.Symbol, fileURI string) []*core.Symbol {
	if fileURI == "" || len(syms) < 2 {
		return syms
	}
	out := make([]*core.Symbol, 0, len(syms))
	for _, s := range syms {
		if s.FileURI == fileURI {
			out = append(out, s)
		}
	}
	for _, s := range syms {
		if s.FileURI != fileURI {
			out = append(out, s)
		}
	}
	return out
}

func (ix *Index) directChildrenLocked(prefix string) []*core.Symbol {
	var out []*core.Symbol
	prefixParts := len(core.SplitPath(prefix))
	for path, syms := range ix.byPath {
		parts := core.SplitPath(path)
		if len(parts) == prefixParts+1 && core.JoinPath(parts[:prefixParts]...) == prefix {
			out = append(out, syms...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// WouldCreateCircularDependency reports whether adding an edge from→to
// would close a cycle, i.e. whether to can already reach from via
// resolved edges.
func (ix *Index) WouldCreateCircularDependency(from, to string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if from == to {
		return true
	}
	visited := map[string]bool{}
	var dfs func(string) bool
	dfs = func(cur string) bool {
		if cur == from {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for _, entry := range ix.byFile {
			for _, e := range entry.Edges {
				if e.Resolved && e.From == cur && dfs(e.To) {
					return true
				}
			}
		}
		return false
	}
	return dfs(to)
}
