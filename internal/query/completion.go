package query

import (
	"sort"
	"strings"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/engine"
)

// Scope classifies where the cursor sits for completion purposes
// (spec.md §4.9 Completion).
type Scope int

const (
	ScopeTopLevel Scope = iota
	ScopeModule
	ScopeFeature
	ScopeRequirement
	ScopeDependsOn
	ScopeConstraint
	ScopeCodeBlock
	ScopeSuppressed // inside a comment or code-block body: no completion
)

var keywordsByScope = map[Scope][]string{
	ScopeTopLevel:    {"@description", "@module"},
	ScopeModule:      {"@feature", "@requirement", "@constraint", "@depends-on"},
	ScopeFeature:     {"@requirement", "@constraint", "@depends-on"},
	ScopeRequirement: {"@constraint", "@depends-on"},
}

// CompletionItem is one candidate, in the shape resolveCompletionItem
// later attaches documentation to.
type CompletionItem struct {
	Label string
	// symbolPath is the symbol a reference candidate stands for;
	// ResolveCompletionItem looks it up to build the hover-style
	// documentation on demand (spec.md §4.9). Empty for keyword and
	// constraint-name items.
	symbolPath string
}

// Keywords returns the keyword candidates for a scope.
func Keywords(scope Scope) []CompletionItem {
	var out []CompletionItem
	for _, kw := range keywordsByScope[scope] {
		out = append(out, CompletionItem{Label: kw})
	}
	return out
}

// ConstraintNames returns every distinct constraint simple name in the
// workspace, ranked by usage count descending (spec.md §4.9: "ranked by
// workspace usage count").
func ConstraintNames(snap *engine.Snapshot) []CompletionItem {
	counts := map[string]int{}
	for _, sym := range snap.Index.ByKind(core.KindConstraint) {
		counts[sym.Name]++
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	out := make([]CompletionItem, len(names))
	for i, n := range names {
		out[i] = CompletionItem{Label: n}
	}
	return out
}

// ReferenceCandidates completes a @depends-on reference: symbols
// filtered by fuzzy (substring) match on the typed prefix, excluding the
// self path and any path that would create a cycle, boosting same-file
// candidates, capped at 50 (spec.md §4.9 Completion).
func ReferenceCandidates(snap *engine.Snapshot, selfPath, typed, fromURI string) []CompletionItem {
	typed = strings.ToLower(typed)

	// Path navigation: after a trailing "." the candidates are the
	// direct children of that prefix. The typed text itself ends in an
	// empty segment and never resolves exactly, so resolving it yields
	// the prefix as the partial match together with its direct children.
	if strings.HasSuffix(typed, ".") {
		res := snap.Index.ResolveReference(typed, fromURI)
		var out []CompletionItem
		for _, c := range res.Children {
			out = append(out, CompletionItem{Label: c.Name, symbolPath: c.Path})
		}
		return out
	}

	type candidate struct {
		item     CompletionItem
		sameFile bool
	}
	var candidates []candidate
	for _, kind := range []core.SymbolKind{core.KindModule, core.KindFeature, core.KindRequirement} {
		for _, sym := range snap.Index.ByKind(kind) {
			if sym.Path == selfPath || strings.HasPrefix(sym.Path, selfPath+".") {
				continue
			}
			if typed != "" && !strings.Contains(strings.ToLower(sym.Path), typed) {
				continue
			}
			if snap.Index.WouldCreateCircularDependency(selfPath, sym.Path) {
				continue
			}
			candidates = append(candidates, candidate{
				item:     CompletionItem{Label: sym.Path, symbolPath: sym.Path},
				sameFile: sym.FileURI == fromURI,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sameFile != candidates[j].sameFile {
			return candidates[i].sameFile
		}
		return candidates[i].item.Label < candidates[j].item.Label
	})
	if len(candidates) > 50 {
		candidates = candidates[:50]
	}
	out := make([]CompletionItem, len(candidates))
	for i, c := range candidates {
		out[i] = c.item
	}
	return out
}

// ResolveCompletionItem attaches full hover-style documentation to a
// previously-returned reference candidate.
func ResolveCompletionItem(snap *engine.Snapshot, item CompletionItem) (Hover, bool) {
	if item.symbolPath == "" {
		return Hover{}, false
	}
	syms, _ := snap.Index.Lookup(item.symbolPath)
	if len(syms) == 0 {
		return Hover{}, false
	}
	return HoverFor(syms[0]), true
}
