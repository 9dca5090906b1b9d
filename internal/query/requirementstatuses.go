package query

import (
	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/engine"
	"github.com/oxhq/blueprint-ls/internal/status"
)

// RequirementStatus is one row of the custom blueprint/requirementStatuses
// response: a requirement's derived status and blocking status together,
// since editors displaying a status gutter need both in one round trip.
// Line is the requirement's declaration line, per spec.md §6's
// { line, status, path } response shape.
type RequirementStatus struct {
	Path     string
	Line     int
	Derived  core.DerivedStatus
	Blocking status.Blocking
}

// RequirementStatuses implements the custom blueprint/requirementStatuses
// request (spec.md §4.9 supplemented custom request): every requirement
// in the workspace (or, if uri is non-empty, just that file) with its
// derived and blocking status.
func RequirementStatuses(snap *engine.Snapshot, uri string) []RequirementStatus {
	var out []RequirementStatus
	for _, sym := range snap.Index.ByKind(core.KindRequirement) {
		if uri != "" && sym.FileURI != uri {
			continue
		}
		var constraintNames []string
		for _, c := range sym.Children {
			if c.Kind == core.KindConstraint {
				constraintNames = append(constraintNames, c.Name)
			}
		}
		out = append(out, RequirementStatus{
			Path:     sym.Path,
			Line:     sym.Location.Start.Line,
			Derived:  snap.DerivedStatus(sym.Path, constraintNames),
			Blocking: snap.Blocking(sym.Path),
		})
	}
	return out
}
