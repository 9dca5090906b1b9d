package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/blueprint-ls/core"
)

func newTestEngine() *Engine {
	return New(WithDebounce(0))
}

func TestUpdateDocument_IndexesSymbols(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module auth\n@feature login\n@requirement basic-auth\n")

	snap := e.Snapshot()
	syms, conflict := snap.Index.Lookup("auth.login.basic-auth")
	require.False(t, conflict)
	require.Len(t, syms, 1)
}

func TestUpdateDocument_CrossFileResolution(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n  @depends-on b\n")
	e.UpdateDocument("b.bp", "@module b\n")

	snap := e.Snapshot()
	deps := snap.Graph.Dependencies("a")
	require.Len(t, deps, 1)
	require.Equal(t, "b", deps[0].To)
}

func TestRemoveDocument_DropsSymbols(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n")
	e.RemoveDocument("a.bp")

	_, conflict := e.Snapshot().Index.Lookup("a")
	require.False(t, conflict)
	require.Empty(t, e.Snapshot().Index.ByKind(core.KindModule))
}

func TestUpdateTicketFile_DrivesDerivedStatus(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n@requirement r\n@constraint strong\n")
	e.UpdateTicketFile("a.tickets.json", []byte(`{
		"tickets": [{"id": "T1", "ref": "a.r", "description": "x", "status": "complete", "constraints_satisfied": ["strong"]}]
	}`))

	snap := e.Snapshot()
	got := snap.DerivedStatus("a.r", []string{"strong"})
	require.Equal(t, core.StatusComplete, got)
}

func TestUpdateTicketFile_MissingConstraintIsInProgress(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n@requirement r\n@constraint strong\n")
	e.UpdateTicketFile("a.tickets.json", []byte(`{
		"tickets": [{"id": "T1", "ref": "a.r", "description": "x", "status": "complete", "constraints_satisfied": []}]
	}`))

	snap := e.Snapshot()
	require.Equal(t, core.StatusInProgress, snap.DerivedStatus("a.r", []string{"strong"}))
}

func TestSnapshot_BlockingReflectsDependencyStatus(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n@requirement r1\n  @depends-on a.r2\n@requirement r2\n")
	snap := e.Snapshot()

	b := snap.Blocking("a.r1")
	require.Equal(t, core.BlockingBlocked, b.Status)
}

func TestSnapshot_GetUnresolvedReferences(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n  @depends-on missing\n")
	snap := e.Snapshot()

	unresolved := snap.GetUnresolvedReferences()
	require.Len(t, unresolved, 1)
	require.Equal(t, "missing", unresolved[0].To)
}

func TestSnapshot_GetConflicts(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module dup\n")
	e.UpdateDocument("b.bp", "@module dup\n")
	snap := e.Snapshot()

	conflicts := snap.GetConflicts()
	require.Contains(t, conflicts, "dup")
	require.Len(t, conflicts["dup"], 2)
}

func TestSnapshot_Stats(t *testing.T) {
	e := newTestEngine()
	e.UpdateDocument("a.bp", "@module a\n@feature f\n@requirement r\n@constraint c\n")
	snap := e.Snapshot()

	st := snap.Stats()
	require.Equal(t, 1, st.Modules)
	require.Equal(t, 1, st.Features)
	require.Equal(t, 1, st.Requirements)
	require.Equal(t, 1, st.Constraints)
	require.Equal(t, 1, st.Files)
}

func TestScheduleRecompute_StaleVersionSkipped(t *testing.T) {
	e := New(WithDebounce(0))
	e.UpdateDocument("a.bp", "@module a\n")
	e.UpdateDocument("a.bp", "@module a\n@feature f\n")

	snap := e.Snapshot()
	require.Equal(t, 2, snap.Version)
	require.Len(t, snap.Index.ByKind(core.KindFeature), 1)
}
