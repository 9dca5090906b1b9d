// Package query implements spec.md §4.9: every LSP-style operation as a
// pure function of an engine.Snapshot.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/engine"
)

// DocumentSymbol is one node in the hierarchical per-file symbol tree.
type DocumentSymbol struct {
	Name          string
	Kind          core.SymbolKind
	Range         core.Location
	SelectionName string
	SelectionLoc  core.Location
	Children      []*DocumentSymbol
}

// DocumentSymbols returns the hierarchical tree for one file (spec.md
// §4.9 Document symbols). Symbols are read straight from the file's
// symtab.Table since containment there already mirrors the CST tree.
func DocumentSymbols(snap *engine.Snapshot, uri string) []*DocumentSymbol {
	entry := snap.Index.File(uri)
	if entry == nil {
		return nil
	}
	var roots []*DocumentSymbol
	for _, sym := range entry.Table.Modules {
		roots = append(roots, toDocSymbol(sym))
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	return roots
}

func toDocSymbol(sym *core.Symbol) *DocumentSymbol {
	ds := &DocumentSymbol{
		Name:         sym.Name,
		Kind:         sym.Kind,
		Range:        sym.Location,
		SelectionLoc: sym.NameLoc,
	}
	for _, c := range sym.Children {
		ds.Children = append(ds.Children, toDocSymbol(c))
	}
	return ds
}

// WorkspaceSymbols filters by_kind across all kinds by substring match on
// name or path (spec.md §4.9 Workspace symbols).
func WorkspaceSymbols(snap *engine.Snapshot, query string) []*core.Symbol {
	query = strings.ToLower(query)
	var out []*core.Symbol
	for _, kind := range []core.SymbolKind{core.KindModule, core.KindFeature, core.KindRequirement, core.KindConstraint} {
		for _, sym := range snap.Index.ByKind(kind) {
			if query == "" || strings.Contains(strings.ToLower(sym.Name), query) || strings.Contains(strings.ToLower(sym.Path), query) {
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Definition resolves the declaration(s) for the reference path ending
// at the hovered token: hovering "M" in "M.F.R" goes to the module,
// hovering "R" goes to the requirement (spec.md §4.9 Definition).
// tokenIndex is the 0-based position of the hovered identifier within
// ref.Parts.
func Definition(snap *engine.Snapshot, ref core.Reference, tokenIndex int, fromURI string) []*core.Symbol {
	if tokenIndex < 0 || tokenIndex >= len(ref.Parts) {
		return nil
	}
	prefix := core.JoinPath(ref.Parts[:tokenIndex+1]...)
	res := snap.Index.ResolveReference(prefix, fromURI)
	return res.Exact
}

// ReferenceResult is one located reference to a symbol.
type ReferenceResult struct {
	FileURI  string
	Location core.Location
	// TicketID is set when this reference came from a ticket's "ref"
	// field rather than a @depends-on clause.
	TicketID string
}

// References returns every @depends-on reference location whose text is
// p or starts with "p." (spec.md §4.9 References: a parent reference
// does not count as a reference to its children), plus — for
// requirements — every ticket object's byte span whose ref equals p.
// includeDecl also returns the declaration location(s).
func References(snap *engine.Snapshot, p string, includeDecl bool, ticketSpans map[string][]TicketSpan) []ReferenceResult {
	var out []ReferenceResult
	for _, uri := range snap.Index.Files() {
		entry := snap.Index.File(uri)
		if entry == nil {
			continue
		}
		for _, e := range entry.Edges {
			if e.To == p || strings.HasPrefix(e.To, p+".") {
				out = append(out, ReferenceResult{FileURI: e.FileURI, Location: e.Location})
			}
		}
	}
	for ticketURI, spans := range ticketSpans {
		for _, sp := range spans {
			if sp.Ref == p {
				out = append(out, ReferenceResult{FileURI: ticketURI, Location: sp.Location, TicketID: sp.TicketID})
			}
		}
	}
	if includeDecl {
		syms, _ := snap.Index.Lookup(p)
		for _, s := range syms {
			out = append(out, ReferenceResult{FileURI: s.FileURI, Location: s.Location})
		}
	}
	return out
}

// TicketSpan is the byte span of one ticket object inside a
// .tickets.json file, keyed by the ticket's ref, computed by walking the
// file's JSON token stream (see TicketSpans; spec.md §4.9 References).
type TicketSpan struct {
	TicketID string
	Ref      string
	Location core.Location
}

// Hover describes the markdown-ready content for a symbol under cursor
// (spec.md §4.9 Hover).
type Hover struct {
	Kind         core.SymbolKind
	Path         string
	Description  string
	Dependencies []string
	Constraints  []string
	ChildCount   int
	Declaration  core.Location
}

// HoverFor builds a Hover for the given symbol.
func HoverFor(sym *core.Symbol) Hover {
	h := Hover{
		Kind:        sym.Kind,
		Path:        sym.Path,
		Description: sym.Description,
		Declaration: sym.Location,
		ChildCount:  len(sym.Children),
	}
	for _, d := range sym.DependsOn {
		h.Dependencies = append(h.Dependencies, d.Path())
	}
	for _, c := range sym.Children {
		if c.Kind == core.KindConstraint {
			h.Constraints = append(h.Constraints, c.Name)
		}
	}
	return h
}

// Markdown renders a Hover as the markdown string an LSP client would
// display.
func (h Hover) Markdown() string {
	var b strings.Builder
	b.WriteString("**" + string(h.Kind) + "** `" + h.Path + "`\n\n")
	if h.Description != "" {
		b.WriteString(h.Description + "\n\n")
	}
	b.WriteString("dependencies (" + strconv.Itoa(len(h.Dependencies)) + "): " + strings.Join(h.Dependencies, ", ") + "\n\n")
	b.WriteString("constraints (" + strconv.Itoa(len(h.Constraints)) + "): " + strings.Join(h.Constraints, ", ") + "\n\n")
	b.WriteString("children: " + strconv.Itoa(h.ChildCount))
	return b.String()
}
