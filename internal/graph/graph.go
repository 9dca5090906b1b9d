// Package graph builds and queries the dependency graph described in
// spec.md §4.5: directed edges between fully-qualified paths, transitive
// closure, and simple-cycle enumeration.
package graph

import (
	"sort"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/index"
)

// Edge is one resolved dependency edge, carrying enough to navigate
// find-references.
type Edge struct {
	From     string
	To       string
	FileURI  string
	Location core.Location
}

// Graph is the directed dependency graph over fully-qualified paths.
type Graph struct {
	out map[string][]Edge
	in  map[string][]Edge
}

// Build walks every resolved edge recorded in the index and constructs
// the graph. Unresolved references never become edges (spec.md §4.5);
// they were already collected by the index as diagnostics material.
func Build(ix *index.Index, fileURIs []string) *Graph {
	g := &Graph{out: map[string][]Edge{}, in: map[string][]Edge{}}
	for _, uri := range fileURIs {
		entry := ix.File(uri)
		if entry == nil {
			continue
		}
		for _, e := range entry.Edges {
			if !e.Resolved {
				continue
			}
			edge := Edge{From: e.From, To: e.To, FileURI: e.FileURI, Location: e.Location}
			g.out[edge.From] = append(g.out[edge.From], edge)
			g.in[edge.To] = append(g.in[edge.To], edge)
		}
	}
	return g
}

// Dependencies returns p's direct outgoing edges.
func (g *Graph) Dependencies(p string) []Edge {
	return append([]Edge(nil), g.out[p]...)
}

// Dependents returns p's direct incoming edges.
func (g *Graph) Dependents(p string) []Edge {
	return append([]Edge(nil), g.in[p]...)
}

// TransitiveDependencies returns every path reachable from p, excluding
// p itself, via memoized depth-first traversal.
func (g *Graph) TransitiveDependencies(p string) []string {
	return g.transitiveClosure(p, g.out)
}

// TransitiveDependents returns every path that can reach p, excluding p
// itself.
func (g *Graph) TransitiveDependents(p string) []string {
	return g.transitiveClosure(p, g.in)
}

func (g *Graph) transitiveClosure(p string, adj map[string][]Edge) []string {
	visited := map[string]bool{p: true}
	var out []string
	var dfs func(string)
	dfs = func(cur string) {
		for _, e := range adj[cur] {
			next := otherEnd(e, cur)
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			dfs(next)
		}
	}
	dfs(p)
	sort.Strings(out)
	return out
}

func otherEnd(e Edge, from string) string {
	if from == e.From {
		return e.To
	}
	return e.From
}

// Cycle is one distinct simple cycle: Nodes is the closed path
// [n0, n1, ..., nk, n0]; Edges is the ordered edges along it.
type Cycle struct {
	Nodes []string
	Edges []Edge
}

// Cycles enumerates every distinct simple cycle reachable from the
// graph's nodes via depth-first search with a recursion stack: when a
// node already on the stack is revisited, the slice from its first
// appearance to the current node closes a cycle. Cycles differing only
// by rotation are deduplicated by canonicalising to the rotation
// starting at the lexicographically smallest node.
func (g *Graph) Cycles() []Cycle {
	nodes := g.allNodes()
	onStack := map[string]bool{}
	stack := []string{}
	stackEdges := []Edge{}
	seen := map[string]bool{}
	var out []Cycle

	var dfs func(string)
	dfs = func(cur string) {
		onStack[cur] = true
		stack = append(stack, cur)
		for _, e := range g.out[cur] {
			if onStack[e.To] {
				idx := indexOf(stack, e.To)
				cycleNodes := append([]string(nil), stack[idx:]...)
				cycleEdges := append([]Edge(nil), stackEdges[idx:]...)
				cycleEdges = append(cycleEdges, e)
				cycleNodes = append(cycleNodes, e.To)
				canon := canonicalizeCycle(cycleNodes, cycleEdges)
				key := cycleKey(canon.Nodes)
				if !seen[key] {
					seen[key] = true
					out = append(out, canon)
				}
				continue
			}
			stackEdges = append(stackEdges, e)
			dfs(e.To)
			stackEdges = stackEdges[:len(stackEdges)-1]
		}
		stack = stack[:len(stack)-1]
		onStack[cur] = false
	}
	for _, n := range nodes {
		dfs(n)
	}
	return out
}

func (g *Graph) allNodes() []string {
	set := map[string]bool{}
	for n := range g.out {
		set[n] = true
	}
	for n := range g.in {
		set[n] = true
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// canonicalizeCycle rotates nodes/edges so the cycle starts at its
// lexicographically smallest node, for rotation-insensitive dedup.
func canonicalizeCycle(nodes []string, edges []Edge) Cycle {
	body := nodes[:len(nodes)-1] // drop the repeated closing node
	minIdx := 0
	for i, n := range body {
		if n < body[minIdx] {
			minIdx = i
		}
	}
	rotatedNodes := append(append([]string(nil), body[minIdx:]...), body[:minIdx]...)
	rotatedNodes = append(rotatedNodes, rotatedNodes[0])
	rotatedEdges := append(append([]Edge(nil), edges[minIdx:]...), edges[:minIdx]...)
	return Cycle{Nodes: rotatedNodes, Edges: rotatedEdges}
}

func cycleKey(nodes []string) string {
	key := ""
	for _, n := range nodes {
		key += n + "\x00"
	}
	return key
}
