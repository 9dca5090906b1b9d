package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/ast"
	"github.com/oxhq/blueprint-ls/internal/cst"
	"github.com/oxhq/blueprint-ls/internal/symtab"
)

func table(t *testing.T, uri, src string) *symtab.Table {
	t.Helper()
	root := cst.Parse(uri, src)
	doc := ast.Build(uri, root)
	return symtab.New(uri, doc)
}

func TestAddFile_ResolvesCrossFileReference(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n  @depends-on b\n"))
	ix.AddFile("b.bp", table(t, "b.bp", "@module b\n"))

	entry := ix.File("a.bp")
	require.Len(t, entry.Edges, 1)
	require.True(t, entry.Edges[0].Resolved)
	require.Equal(t, []string{"b.bp"}, ix.FileDeps("a.bp"))
}

func TestAddFile_UnresolvedEdgeUntilTargetAdded(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n  @depends-on b\n"))
	require.False(t, ix.File("a.bp").Edges[0].Resolved)

	ix.AddFile("b.bp", table(t, "b.bp", "@module b\n"))
	require.True(t, ix.File("a.bp").Edges[0].Resolved)
}

func TestLookup_ConflictAcrossFiles(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n"))
	ix.AddFile("b.bp", table(t, "b.bp", "@module a\n"))

	syms, conflict := ix.Lookup("a")
	require.True(t, conflict)
	require.Len(t, syms, 2)
}

func TestRemoveFile_ErasesSlice(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n"))
	ix.RemoveFile("a.bp")

	_, conflict := ix.Lookup("a")
	require.False(t, conflict)
	require.Empty(t, ix.ByKind(core.KindModule))
	require.Nil(t, ix.File("a.bp"))
}

func TestResolveReference_ExactMatch(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n@feature f\n"))

	res := ix.ResolveReference("a.f", "")
	require.Len(t, res.Exact, 1)
	require.Equal(t, "a.f", res.Exact[0].Path)
}

func TestResolveReference_PartialMatchReturnsChildren(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n@feature f\n@requirement r\n"))

	res := ix.ResolveReference("a.f.missing", "")
	require.Empty(t, res.Exact)
	require.Equal(t, "a.f", res.PartialPrefix)
	require.Len(t, res.Children, 1)
	require.Equal(t, "a.f.r", res.Children[0].Path)
}

func TestResolveReference_PrefersSameFileOnAmbiguity(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n"))
	ix.AddFile("b.bp", table(t, "b.bp", "@module a\n"))

	res := ix.ResolveReference("a", "b.bp")
	require.Len(t, res.Exact, 2)
	require.Equal(t, "b.bp", res.Exact[0].FileURI)
}

func TestWouldCreateCircularDependency(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module a\n  @depends-on b\n"))
	ix.AddFile("b.bp", table(t, "b.bp", "@module b\n"))

	require.True(t, ix.WouldCreateCircularDependency("b", "a"))
	require.False(t, ix.WouldCreateCircularDependency("a", "b"))
}

func TestByKind_SortedByPath(t *testing.T) {
	ix := New()
	ix.AddFile("a.bp", table(t, "a.bp", "@module z\n@module a\n"))
	syms := ix.ByKind(core.KindModule)
	require.Len(t, syms, 2)
	require.Equal(t, "a", syms[0].Path)
	require.Equal(t, "z", syms[1].Path)
}
