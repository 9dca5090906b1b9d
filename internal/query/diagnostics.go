package query

import (
	"fmt"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/engine"
)

// Diagnostics computes every diagnostic for one file (spec.md §4.9
// Diagnostics): parser errors, @description misplacement (multiple
// @description blocks, or one after a @module), duplicate identifiers
// within the file, cross-file path conflicts on this file's symbols,
// unresolved references, circular dependencies touching this file, and
// info diagnostics for requirements whose dependencies are not complete.
func Diagnostics(snap *engine.Snapshot, uri string) []core.Diagnostic {
	var out []core.Diagnostic

	for _, loc := range snap.ParseErrors[uri] {
		out = append(out, core.Diagnostic{Location: loc, Severity: core.SeverityError, Source: "parser", Message: "syntax error"})
	}

	for _, loc := range snap.ExtraDescriptionLocs[uri] {
		out = append(out, core.Diagnostic{
			Location: loc, Severity: core.SeverityWarning, Source: "parser",
			Message: "at most one @description block is allowed per file; this one is ignored",
		})
	}

	for _, loc := range snap.MisplacedDescriptionLocs[uri] {
		out = append(out, core.Diagnostic{
			Location: loc, Severity: core.SeverityError, Source: "parser",
			Message: "@description must precede all @module blocks",
		})
	}

	entry := snap.Index.File(uri)
	if entry == nil {
		return out
	}

	for _, dup := range entry.Table.Duplicates {
		out = append(out, core.Diagnostic{
			Location: dup.Dup.Location, Severity: core.SeverityError, Source: "symtab",
			Message: fmt.Sprintf("duplicate %s %q (original at %s)", dup.Kind, dup.Path, dup.Original.Location),
		})
	}

	for _, sym := range entry.Table.All() {
		if syms, conflict := snap.Index.Lookup(sym.Path); conflict {
			for _, other := range syms {
				if other.FileURI == uri {
					continue
				}
				out = append(out, core.Diagnostic{
					Location: sym.Location, Severity: core.SeverityWarning, Source: "index",
					Message: fmt.Sprintf("%q is also defined in %s", sym.Path, other.FileURI),
				})
			}
		}
	}

	for _, e := range entry.Edges {
		if !e.Resolved {
			out = append(out, core.Diagnostic{
				Location: e.Location, Severity: core.SeverityError, Source: "index",
				Message: fmt.Sprintf("cannot resolve reference %q", e.To),
			})
		}
	}

	for _, c := range snap.Graph.Cycles() {
		touches := false
		for _, n := range c.Nodes {
			if syms, _ := snap.Index.Lookup(n); len(syms) > 0 && syms[0].FileURI == uri {
				touches = true
				break
			}
		}
		if touches && len(c.Edges) > 0 {
			out = append(out, core.Diagnostic{
				Location: c.Edges[0].Location, Severity: core.SeverityError, Source: "graph",
				Message: fmt.Sprintf("circular dependency: %v", c.Nodes),
			})
		}
	}

	for _, sym := range entry.Table.Requirements {
		var names []string
		for _, c := range sym.Children {
			if c.Kind == core.KindConstraint {
				names = append(names, c.Name)
			}
		}
		if snap.DerivedStatus(sym.Path, names) != core.StatusComplete {
			b := snap.Blocking(sym.Path)
			if b.Status != core.BlockingNotBlocked {
				out = append(out, core.Diagnostic{
					Location: sym.Location, Severity: core.SeverityInfo, Source: "status",
					Message: fmt.Sprintf("%s has unmet dependencies (%s)", sym.Path, b.Status),
				})
			}
		}
	}

	return out
}
