package core

import "strings"

// SymbolKind enumerates the four kinds of declarations a Blueprint
// document can contain.
type SymbolKind string

const (
	KindModule      SymbolKind = "module"
	KindFeature     SymbolKind = "feature"
	KindRequirement SymbolKind = "requirement"
	KindConstraint  SymbolKind = "constraint"
)

// Reference is an ordered, non-empty sequence of identifier parts taken
// from a `@depends-on` operand, together with the source span it was
// parsed from.
type Reference struct {
	Parts    []string
	Location Location
}

// Path joins the reference's parts into its canonical dotted form.
func (r Reference) Path() string {
	return strings.Join(r.Parts, ".")
}

// JoinPath builds a fully-qualified path from ordered name components.
func JoinPath(parts ...string) string {
	return strings.Join(parts, ".")
}

// SplitPath is the inverse of JoinPath.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Symbol is a single declared module/feature/requirement/constraint.
type Symbol struct {
	Kind        SymbolKind
	Name        string
	Path        string
	Description string
	// Location is the full declaration block's span; NameLoc is the
	// narrower span of just the name identifier, used for selection
	// ranges (spec.md §4.9).
	Location Location
	NameLoc  Location
	FileURI  string

	// DependsOn holds the dependency references declared directly under
	// this symbol (modules/features/requirements only; constraints never
	// carry their own @depends-on block per the grammar).
	DependsOn []Reference

	// Children holds the immediate child symbols for container kinds
	// (module -> feature|requirement|constraint, feature ->
	// requirement|constraint, requirement -> constraint).
	Children []*Symbol
}

// Duplicate records a same-path collision discovered while building a
// single file's symbol table (spec.md §3 invariants).
type Duplicate struct {
	Kind     SymbolKind
	Path     string
	Original *Symbol
	Dup      *Symbol
}
