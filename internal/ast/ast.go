// Package ast transforms a parsed cst.Node tree into the typed tree
// described in spec.md §3: Document, Module, Feature, Requirement,
// Constraint, each carrying a description, dependency references, and
// (for containers) child symbols — all with bit-exact source locations
// copied from the CST (spec.md §4.2).
package ast

import "github.com/oxhq/blueprint-ls/core"

// Description is the document's single (at most) top-level @description
// block.
type Description struct {
	Text     string
	Location core.Location
}

// Container is the common shape of Module, Feature, and Requirement: they
// own a name, a description, dependency references, and child symbols.
type Container struct {
	Name        string
	Path        string
	Description string
	NameLoc     core.Location
	Location    core.Location
	DependsOn   []core.Reference
	Constraints []*Constraint
}

// Constraint is a leaf declaration: it owns a description but no
// dependencies or children (spec.md §4.2/§3).
type Constraint struct {
	Name        string
	Path        string
	Description string
	NameLoc     core.Location
	Location    core.Location
}

// Requirement is either feature-owned (M.F.R) or module-direct (M.R).
type Requirement struct {
	Container
}

// Feature owns requirements and constraints.
type Feature struct {
	Container
	Requirements []*Requirement
}

// Module is the top-level container: M.
type Module struct {
	Container
	Features     []*Feature
	Requirements []*Requirement // module-direct requirements
}

// Document is one parsed .bp file.
type Document struct {
	URI         string
	Description *Description
	// ExtraDescriptions holds every @description block beyond the last
	// (the last one seen is the one kept as Description, per spec.md
	// §4.2), so the query layer can emit duplicate diagnostics.
	ExtraDescriptions []*Description
	// MisplacedDescriptions holds every @description block (kept or
	// extra) that appears after the first @module block in document
	// order, violating spec.md §7's "@description must precede all
	// @module blocks".
	MisplacedDescriptions []*Description
	Modules               []*Module
	// Errors are ERROR-subtree locations surfaced verbatim from the CST.
	Errors []core.Location
}
