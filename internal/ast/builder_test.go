package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/blueprint-ls/internal/cst"
)

func parse(t *testing.T, src string) *Document {
	t.Helper()
	root := cst.Parse("a.bp", src)
	return Build("a.bp", root)
}

func TestBuild_ModuleFeatureRequirement(t *testing.T) {
	doc := parse(t, "@module auth\n@feature login\n@requirement basic-auth\n")
	require.Len(t, doc.Modules, 1)
	mod := doc.Modules[0]
	require.Equal(t, "auth", mod.Path)
	require.Len(t, mod.Features, 1)
	feat := mod.Features[0]
	require.Equal(t, "auth.login", feat.Path)
	require.Len(t, feat.Requirements, 1)
	req := feat.Requirements[0]
	require.Equal(t, "auth.login.basic-auth", req.Path)
}

func TestBuild_ModuleDirectRequirement(t *testing.T) {
	doc := parse(t, "@module a\n@requirement direct\n")
	mod := doc.Modules[0]
	require.Len(t, mod.Requirements, 1)
	require.Equal(t, "a.direct", mod.Requirements[0].Path)
}

func TestBuild_DescriptionKeepsLast(t *testing.T) {
	doc := parse(t, "@description\n  first\n@description\n  second\n")
	require.NotNil(t, doc.Description)
	require.Equal(t, "second", doc.Description.Text)
	require.Len(t, doc.ExtraDescriptions, 1)
	require.Equal(t, "first", doc.ExtraDescriptions[0].Text)
}

func TestBuild_DescriptionAfterModuleIsMisplaced(t *testing.T) {
	doc := parse(t, "@module a\n@description\n  oops\n")
	require.Len(t, doc.MisplacedDescriptions, 1)
	require.Equal(t, "oops", doc.MisplacedDescriptions[0].Text)
}

func TestBuild_DescriptionBeforeModuleIsNotMisplaced(t *testing.T) {
	doc := parse(t, "@description\n  fine\n@module a\n")
	require.Empty(t, doc.MisplacedDescriptions)
}

func TestBuild_DependsOnReferences(t *testing.T) {
	doc := parse(t, "@module a\n  @depends-on b.c, d\n")
	mod := doc.Modules[0]
	require.Len(t, mod.DependsOn, 2)
	require.Equal(t, "b.c", mod.DependsOn[0].Path())
	require.Equal(t, "d", mod.DependsOn[1].Path())
}

func TestBuild_ConstraintUnderRequirement(t *testing.T) {
	doc := parse(t, "@module a\n@requirement r\n@constraint strong\n")
	mod := doc.Modules[0]
	req := mod.Requirements[0]
	require.Len(t, req.Constraints, 1)
	require.Equal(t, "a.r.strong", req.Constraints[0].Path)
}

func TestBuild_FeatureWithoutModuleRecoveredButErrored(t *testing.T) {
	doc := parse(t, "@feature orphan\n")
	require.Len(t, doc.Errors, 1)
}

func TestBuild_DescriptionTextConcatenation(t *testing.T) {
	doc := parse(t, "@module a\n  first line\n  second line\n")
	mod := doc.Modules[0]
	require.Equal(t, "first line\nsecond line", mod.Description)
}
