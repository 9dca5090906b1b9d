// Package symtab builds the per-file symbol table described in spec.md
// §4.3: four path-keyed maps (module/feature/requirement/constraint) plus
// a duplicate list, built directly from one file's AST.
package symtab

import (
	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/ast"
)

// Table is one file's symbol table.
type Table struct {
	FileURI      string
	Modules      map[string]*core.Symbol
	Features     map[string]*core.Symbol
	Requirements map[string]*core.Symbol
	Constraints  map[string]*core.Symbol
	Duplicates   []core.Duplicate

	// Order lists every symbol in the order it was added, for
	// deterministic iteration through All: per module, the module, then
	// each feature with its requirements and constraints, then its
	// module-direct requirements, then its module-level constraints. A
	// duplicate is listed alongside the symbol it collided with.
	Order []*core.Symbol
}

// New builds a Table from a parsed document.
func New(fileURI string, doc *ast.Document) *Table {
	t := &Table{
		FileURI:      fileURI,
		Modules:      map[string]*core.Symbol{},
		Features:     map[string]*core.Symbol{},
		Requirements: map[string]*core.Symbol{},
		Constraints:  map[string]*core.Symbol{},
	}
	for _, m := range doc.Modules {
		t.addModule(m)
	}
	return t
}

func (t *Table) put(m map[string]*core.Symbol, kind core.SymbolKind, sym *core.Symbol) {
	if existing, ok := m[sym.Path]; ok {
		t.Duplicates = append(t.Duplicates, core.Duplicate{
			Kind:     kind,
			Path:     sym.Path,
			Original: existing,
			Dup:      sym,
		})
	}
	m[sym.Path] = sym // last occurrence wins, per spec.md §3
	t.Order = append(t.Order, sym)
}

func (t *Table) addModule(m *ast.Module) {
	sym := &core.Symbol{
		Kind: core.KindModule, Name: m.Name, Path: m.Path,
		Description: m.Description, Location: m.Location, NameLoc: m.NameLoc, FileURI: t.FileURI,
		DependsOn: m.DependsOn,
	}
	t.put(t.Modules, core.KindModule, sym)

	for _, f := range m.Features {
		t.addFeature(f, sym)
	}
	for _, r := range m.Requirements {
		t.addRequirement(r, sym)
	}
	for _, c := range m.Constraints {
		t.addConstraint(c, sym)
	}
}

func (t *Table) addFeature(f *ast.Feature, parent *core.Symbol) {
	sym := &core.Symbol{
		Kind: core.KindFeature, Name: f.Name, Path: f.Path,
		Description: f.Description, Location: f.Location, NameLoc: f.NameLoc, FileURI: t.FileURI,
		DependsOn: f.DependsOn,
	}
	t.put(t.Features, core.KindFeature, sym)
	parent.Children = append(parent.Children, sym)

	for _, r := range f.Requirements {
		t.addRequirement(r, sym)
	}
	for _, c := range f.Constraints {
		t.addConstraint(c, sym)
	}
}

func (t *Table) addRequirement(r *ast.Requirement, parent *core.Symbol) {
	sym := &core.Symbol{
		Kind: core.KindRequirement, Name: r.Name, Path: r.Path,
		Description: r.Description, Location: r.Location, NameLoc: r.NameLoc, FileURI: t.FileURI,
		DependsOn: r.DependsOn,
	}
	t.put(t.Requirements, core.KindRequirement, sym)
	parent.Children = append(parent.Children, sym)

	for _, c := range r.Constraints {
		t.addConstraint(c, sym)
	}
}

func (t *Table) addConstraint(c *ast.Constraint, parent *core.Symbol) {
	sym := &core.Symbol{
		Kind: core.KindConstraint, Name: c.Name, Path: c.Path,
		Description: c.Description, Location: c.Location, NameLoc: c.NameLoc, FileURI: t.FileURI,
	}
	t.put(t.Constraints, core.KindConstraint, sym)
	parent.Children = append(parent.Children, sym)
}

// All returns every symbol across all four kinds, in Order.
func (t *Table) All() []*core.Symbol {
	return t.Order
}

// ByKind returns the path-keyed map for the given kind, or nil.
func (t *Table) ByKind(kind core.SymbolKind) map[string]*core.Symbol {
	switch kind {
	case core.KindModule:
		return t.Modules
	case core.KindFeature:
		return t.Features
	case core.KindRequirement:
		return t.Requirements
	case core.KindConstraint:
		return t.Constraints
	}
	return nil
}
