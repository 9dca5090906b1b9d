// Package engine owns the single-threaded snapshot described in
// spec.md §5: one workspace's parsed files, cross-file index, dependency
// graph, and ticket store, recomputed lazily behind a version counter.
// All mutation flows through Engine's Update*/Remove* methods; the query
// package only ever reads an immutable Snapshot.
package engine

import (
	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/ast"
	"github.com/oxhq/blueprint-ls/internal/graph"
	"github.com/oxhq/blueprint-ls/internal/index"
	"github.com/oxhq/blueprint-ls/internal/status"
	"github.com/oxhq/blueprint-ls/internal/symtab"
	"github.com/oxhq/blueprint-ls/internal/tickets"
)

// Snapshot is an immutable view of the workspace at a given version.
// Once built it is never mutated; a new one replaces it wholesale.
type Snapshot struct {
	Version int

	Index *index.Index
	Graph *graph.Graph

	// ParseErrors holds each file's ERROR-subtree locations, keyed by
	// URI, surfaced from ast.Document.Errors so Diagnostics can report
	// parser errors without re-parsing.
	ParseErrors map[string][]core.Location
	// ExtraDescriptionLocs holds each file's @description blocks beyond
	// the kept (last) one, keyed by URI (ast.Document.ExtraDescriptions).
	ExtraDescriptionLocs map[string][]core.Location
	// MisplacedDescriptionLocs holds each file's @description blocks
	// that appear after a @module block, keyed by URI
	// (ast.Document.MisplacedDescriptions).
	MisplacedDescriptionLocs map[string][]core.Location

	// TicketsByFile holds each ingested ticket file keyed by its own
	// URI, for diagnostics/definition/references.
	TicketsByFile map[string]*tickets.File
	// TicketErrors holds validation errors keyed by ticket file URI.
	TicketErrors map[string][]tickets.ValidationError
	// TicketRaw holds each ticket file's original bytes keyed by URI, so
	// the query layer can compute ticket-object byte spans for
	// references without re-reading from disk.
	TicketRaw map[string][]byte
	// ticketsByRef indexes every ticket by the requirement path it
	// references, across every ticket file.
	ticketsByRef status.TicketsByRef

	analyzer *status.Analyzer
}

// DerivedStatus returns p's derived status, computed from its matched
// tickets and declared constraints (spec.md §4.7). constraintNames
// should list the simple names of p's own @constraint children.
func (s *Snapshot) DerivedStatus(p string, constraintNames []string) core.DerivedStatus {
	return status.DerivedStatus(s.ticketsByRef[p], constraintNames)
}

// Blocking returns p's blocking analysis (spec.md §4.8).
func (s *Snapshot) Blocking(p string) status.Blocking {
	return s.analyzer.Blocking(p)
}

// GetUnblockedIfCompleted implements spec.md §4.8's getUnblockedIfCompleted.
func (s *Snapshot) GetUnblockedIfCompleted(p string) []string {
	return s.analyzer.GetUnblockedIfCompleted(p)
}

// GetUnresolvedReferences returns every @depends-on reference across the
// workspace whose target never resolved to a symbol (supplemented
// operation named in spec.md §4.4/§7 prose).
func (s *Snapshot) GetUnresolvedReferences() []index.Edge {
	var out []index.Edge
	for _, uri := range s.Index.Files() {
		entry := s.Index.File(uri)
		if entry == nil {
			continue
		}
		for _, e := range entry.Edges {
			if !e.Resolved {
				out = append(out, e)
			}
		}
	}
	return out
}

// GetConflicts returns every fully-qualified path defined by more than
// one symbol across the workspace (supplemented operation).
func (s *Snapshot) GetConflicts() map[string][]*core.Symbol {
	out := map[string][]*core.Symbol{}
	for _, kind := range []core.SymbolKind{core.KindModule, core.KindFeature, core.KindRequirement, core.KindConstraint} {
		for _, sym := range s.Index.ByKind(kind) {
			syms, conflict := s.Index.Lookup(sym.Path)
			if conflict {
				out[sym.Path] = syms
			}
		}
	}
	return out
}

// Stats is a point-in-time count snapshot (supplemented operation),
// grounded on the teacher's MCPMetrics counters.
type Stats struct {
	Files        int
	Modules      int
	Features     int
	Requirements int
	Constraints  int
	Edges        int
	Conflicts    int
}

// Stats summarizes the snapshot for the CLI `check` subcommand and for
// telemetry.
func (s *Snapshot) Stats() Stats {
	st := Stats{
		Modules:      len(s.Index.ByKind(core.KindModule)),
		Features:     len(s.Index.ByKind(core.KindFeature)),
		Requirements: len(s.Index.ByKind(core.KindRequirement)),
		Constraints:  len(s.Index.ByKind(core.KindConstraint)),
		Conflicts:    len(s.GetConflicts()),
	}
	seenFiles := map[string]bool{}
	for _, kind := range []core.SymbolKind{core.KindModule, core.KindFeature, core.KindRequirement, core.KindConstraint} {
		for _, sym := range s.Index.ByKind(kind) {
			seenFiles[sym.FileURI] = true
		}
	}
	st.Files = len(seenFiles)
	for uri := range seenFiles {
		if entry := s.Index.File(uri); entry != nil {
			st.Edges += len(entry.Edges)
		}
	}
	return st
}

// fileRecord is what the engine retains per open/ingested .bp file so a
// later change can be reapplied without re-reading everything.
type fileRecord struct {
	uri  string
	text string
	doc  *ast.Document
	tbl  *symtab.Table
}
