package cst

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_SimpleModuleFeatureRequirement(t *testing.T) {
	src := "@module auth\n\n@feature login\n\n@requirement basic-auth\n"
	root := Parse("a.bp", src)
	require.Equal(t, KindSourceFile, root.Kind())
	require.False(t, root.HasError())

	modules := root.ChildrenOfKind(KindModuleBlock)
	require.Len(t, modules, 1)
	mod := modules[0]
	require.Equal(t, "auth", mod.Field("name").Text)

	features := mod.ChildrenOfKind(KindFeatureBlock)
	require.Len(t, features, 1)
	feat := features[0]
	require.Equal(t, "login", feat.Field("name").Text)

	reqs := feat.ChildrenOfKind(KindRequirementBlock)
	require.Len(t, reqs, 1)
	req := reqs[0]
	require.Equal(t, "basic-auth", req.Field("name").Text)
	// "@requirement basic-auth" is physical line 4 (0-indexed).
	require.Equal(t, 4, req.Location().Start.Line)
}

func TestParse_DependsOnCommaList(t *testing.T) {
	src := "@module a\n  @depends-on b.c, d\n"
	root := Parse("a.bp", src)
	mod := root.ChildrenOfKind(KindModuleBlock)[0]
	deps := mod.ChildrenOfKind(KindDependsOn)
	require.Len(t, deps, 1)
	refs := deps[0].ChildrenOfKind(KindReference)
	require.Len(t, refs, 2)
	require.Equal(t, []string{"b", "c"}, textsOf(refs[0].IdentifierChildren()))
	require.Equal(t, []string{"d"}, textsOf(refs[1].IdentifierChildren()))
}

func TestParse_ModuleDirectRequirement(t *testing.T) {
	src := "@module a\n@requirement r1\n"
	root := Parse("a.bp", src)
	mod := root.ChildrenOfKind(KindModuleBlock)[0]
	reqs := mod.ChildrenOfKind(KindRequirementBlock)
	require.Len(t, reqs, 1)
	require.Equal(t, "r1", reqs[0].Field("name").Text)
}

func TestParse_FeatureWithoutModuleIsError(t *testing.T) {
	src := "@feature orphan\n"
	root := Parse("a.bp", src)
	require.True(t, root.HasError())
	errs := root.ChildrenOfKind(KindError)
	require.Len(t, errs, 1)
	inner := errs[0].Children()
	require.Len(t, inner, 1)
	require.Equal(t, KindFeatureBlock, inner[0].Kind())
}

func TestParse_DuplicateDescriptionsBothInCST(t *testing.T) {
	src := "@description\n  first\n@description\n  second\n"
	root := Parse("a.bp", src)
	descs := root.ChildrenOfKind(KindDescriptionBlock)
	require.Len(t, descs, 2)
}

func TestParse_CodeBlockPreservesContent(t *testing.T) {
	src := "@module a\n@requirement r\n  ```\n  line one\n  line two\n  ```\n"
	root := Parse("a.bp", src)
	mod := root.ChildrenOfKind(KindModuleBlock)[0]
	req := mod.ChildrenOfKind(KindRequirementBlock)[0]
	blocks := req.ChildrenOfKind(KindCodeBlock)
	require.Len(t, blocks, 1)
	require.Equal(t, "  line one\n  line two", blocks[0].Text)
}

func textsOf(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Text
	}
	return out
}
