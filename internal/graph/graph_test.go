package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/blueprint-ls/internal/ast"
	"github.com/oxhq/blueprint-ls/internal/cst"
	"github.com/oxhq/blueprint-ls/internal/index"
	"github.com/oxhq/blueprint-ls/internal/symtab"
)

func indexWithFiles(t *testing.T, files map[string]string) (*index.Index, []string) {
	t.Helper()
	ix := index.New()
	var uris []string
	for uri, src := range files {
		root := cst.Parse(uri, src)
		doc := ast.Build(uri, root)
		ix.AddFile(uri, symtab.New(uri, doc))
		uris = append(uris, uri)
	}
	return ix, uris
}

func TestBuild_DirectEdge(t *testing.T) {
	ix, uris := indexWithFiles(t, map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n",
	})
	g := Build(ix, uris)
	deps := g.Dependencies("a")
	require.Len(t, deps, 1)
	require.Equal(t, "b", deps[0].To)

	dependents := g.Dependents("b")
	require.Len(t, dependents, 1)
	require.Equal(t, "a", dependents[0].From)
}

func TestTransitiveDependencies(t *testing.T) {
	ix, uris := indexWithFiles(t, map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n  @depends-on c\n",
		"c.bp": "@module c\n",
	})
	g := Build(ix, uris)
	require.Equal(t, []string{"b", "c"}, g.TransitiveDependencies("a"))
	require.Equal(t, []string{"a", "b"}, g.TransitiveDependents("c"))
}

func TestCycles_SimpleTwoNodeCycle(t *testing.T) {
	ix, uris := indexWithFiles(t, map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n  @depends-on a\n",
	})
	g := Build(ix, uris)
	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	require.Equal(t, []string{"a", "b", "a"}, cycles[0].Nodes)
}

func TestCycles_DedupRotations(t *testing.T) {
	ix, uris := indexWithFiles(t, map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n  @depends-on c\n",
		"c.bp": "@module c\n  @depends-on a\n",
	})
	g := Build(ix, uris)
	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	require.Equal(t, "a", cycles[0].Nodes[0])
}

func TestCycles_NoCycleWhenAcyclic(t *testing.T) {
	ix, uris := indexWithFiles(t, map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n",
	})
	g := Build(ix, uris)
	require.Empty(t, g.Cycles())
}

func TestBuild_UnresolvedReferenceNeverBecomesEdge(t *testing.T) {
	ix, uris := indexWithFiles(t, map[string]string{
		"a.bp": "@module a\n  @depends-on missing\n",
	})
	g := Build(ix, uris)
	require.Empty(t, g.Dependencies("a"))
}
