package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/blueprint-ls/internal/engine"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	buf := make([]byte, 64*1024)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

func newTestSnapshot(docs map[string]string) *engine.Snapshot {
	eng := engine.New(engine.WithDebounce(0))
	for uri, text := range docs {
		eng.UpdateDocument(uri, text)
	}
	return eng.Snapshot()
}

func TestRunCheck_ReportsUnresolvedReference(t *testing.T) {
	snap := newTestSnapshot(map[string]string{"a.bp": "@module a\n  @depends-on missing\n"})
	out := captureStdout(t, func() { require.NoError(t, runCheck(snap)) })
	require.Contains(t, out, "cannot resolve reference")
	require.Contains(t, out, "1 module(s)")
}

func TestRunGraph_ReportsEdgesAndNoCycles(t *testing.T) {
	snap := newTestSnapshot(map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n",
	})
	out := captureStdout(t, func() { require.NoError(t, runGraph(snap)) })
	require.Contains(t, out, "a -> b (resolved)")
	require.Contains(t, out, "no cycles")
}

func TestRunGraph_ReportsCycle(t *testing.T) {
	snap := newTestSnapshot(map[string]string{
		"a.bp": "@module a\n  @depends-on b\n",
		"b.bp": "@module b\n  @depends-on a\n",
	})
	out := captureStdout(t, func() { require.NoError(t, runGraph(snap)) })
	require.Contains(t, out, "cycle(s)")
}

func TestRunStatus_ReportsDerivedAndBlocking(t *testing.T) {
	snap := newTestSnapshot(map[string]string{"a.bp": "@module a\n@requirement r\n"})
	out := captureStdout(t, func() { require.NoError(t, runStatus(snap)) })
	require.Contains(t, out, "a.r")
	require.Contains(t, out, "derived=no-ticket")
	require.Contains(t, out, "blocking=not-blocked")
}

func TestSeverityLabel(t *testing.T) {
	require.Equal(t, "error", severityLabel(1))
	require.Equal(t, "warning", severityLabel(2))
	require.Equal(t, "info", severityLabel(3))
	require.Equal(t, "hint", severityLabel(4))
	require.Equal(t, "unknown", severityLabel(99))
}
