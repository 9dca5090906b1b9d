// Package status computes derived requirement status (spec.md §4.7) and
// blocking analysis (§4.8) from a symbol's matched tickets, declared
// constraints, and the dependency graph.
package status

import (
	"sort"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/graph"
	"github.com/oxhq/blueprint-ls/internal/tickets"
)

// TicketsByRef maps a requirement's fully-qualified path to every ticket
// referencing it (across every ingested ticket file).
type TicketsByRef map[string][]tickets.Ticket

// DerivedStatus implements spec.md §4.7's rule set for one requirement.
func DerivedStatus(matched []tickets.Ticket, constraintNames []string) core.DerivedStatus {
	if len(matched) == 0 {
		return core.StatusNoTicket
	}

	allObsolete := true
	for _, t := range matched {
		if t.Status != core.TicketObsolete {
			allObsolete = false
			break
		}
	}
	if allObsolete {
		return core.StatusObsolete
	}

	satisfied := map[string]bool{}
	hasComplete := false
	for _, t := range matched {
		if t.Status == core.TicketComplete {
			hasComplete = true
			for _, c := range t.ConstraintsSatisfied {
				satisfied[c] = true
			}
		}
	}
	if hasComplete {
		allSatisfied := true
		for _, c := range constraintNames {
			if !satisfied[c] {
				allSatisfied = false
				break
			}
		}
		if allSatisfied {
			return core.StatusComplete
		}
		return core.StatusInProgress
	}

	for _, t := range matched {
		if t.Status == core.TicketInProgress {
			return core.StatusInProgress
		}
	}
	return core.StatusPending
}

// Blocking is the per-requirement blocking result (spec.md §4.8).
type Blocking struct {
	Status             core.BlockingStatus
	CycleInfo          []string
	DirectBlockers     []string
	TransitiveBlockers []string
}

// Analyzer computes blocking status against a fixed graph snapshot and a
// status lookup function.
type Analyzer struct {
	g            *graph.Graph
	derivedOf    func(path string) core.DerivedStatus
	cycleMembers map[string][]string
}

// NewAnalyzer builds an Analyzer over g, using derivedOf to look up each
// dependency's derived status (spec.md §4.7 feeding §4.8).
func NewAnalyzer(g *graph.Graph, derivedOf func(path string) core.DerivedStatus) *Analyzer {
	a := &Analyzer{g: g, derivedOf: derivedOf, cycleMembers: map[string][]string{}}
	for _, c := range g.Cycles() {
		members := c.Nodes[:len(c.Nodes)-1]
		for _, m := range members {
			for _, peer := range members {
				if peer != m {
					a.cycleMembers[m] = append(a.cycleMembers[m], peer)
				}
			}
		}
	}
	return a
}

// Blocking computes p's blocking result.
func (a *Analyzer) Blocking(p string) Blocking {
	if peers, inCycle := a.cycleMembers[p]; inCycle {
		return Blocking{Status: core.BlockingInCycle, CycleInfo: dedupSorted(peers)}
	}

	direct := a.g.Dependencies(p)
	directSet := map[string]bool{}
	var directBlockers []string
	for _, e := range direct {
		directSet[e.To] = true
		if !a.derivedOf(e.To).Complete() {
			directBlockers = append(directBlockers, e.To)
		}
	}

	var transitiveBlockers []string
	for _, dep := range a.g.TransitiveDependencies(p) {
		if directSet[dep] {
			continue
		}
		if !a.derivedOf(dep).Complete() {
			transitiveBlockers = append(transitiveBlockers, dep)
		}
	}

	status := core.BlockingNotBlocked
	if len(directBlockers) > 0 || len(transitiveBlockers) > 0 {
		status = core.BlockingBlocked
	}
	return Blocking{
		Status:             status,
		DirectBlockers:     dedupSorted(directBlockers),
		TransitiveBlockers: dedupSorted(transitiveBlockers),
	}
}

func dedupSorted(in []string) []string {
	set := map[string]bool{}
	for _, s := range in {
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ContainerStatus propagates the aggregation rule in spec.md §4.8: a
// container is in-cycle if any member is, else blocked if any member is,
// else not-blocked. Members is the set of the container's own
// requirements (direct for a module, recursive through features).
func ContainerStatus(memberBlocking []Blocking) core.BlockingStatus {
	anyBlocked := false
	for _, b := range memberBlocking {
		if b.Status == core.BlockingInCycle {
			return core.BlockingInCycle
		}
		if b.Status == core.BlockingBlocked {
			anyBlocked = true
		}
	}
	if anyBlocked {
		return core.BlockingBlocked
	}
	return core.BlockingNotBlocked
}

// GetUnblockedIfCompleted returns the requirements that would transition
// from blocked to not-blocked if p became complete: transitive
// dependents of p whose only remaining blocker set collapses to empty
// once p is excluded from "not complete/obsolete" consideration.
func (a *Analyzer) GetUnblockedIfCompleted(p string) []string {
	var out []string
	for _, dependent := range a.g.TransitiveDependents(p) {
		b := a.Blocking(dependent)
		if b.Status != core.BlockingBlocked {
			continue
		}
		if wouldClear(b.DirectBlockers, p) && wouldClear(b.TransitiveBlockers, p) {
			out = append(out, dependent)
		}
	}
	sort.Strings(out)
	return out
}

func wouldClear(blockers []string, p string) bool {
	for _, b := range blockers {
		if b != p {
			return false
		}
	}
	return true
}
