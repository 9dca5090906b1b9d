package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_FindsBlueprintAndTicketFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "auth.bp"), "@module auth\n")
	writeFile(t, filepath.Join(root, ".blueprint", "tickets", "auth.tickets.json"), "{}")
	writeFile(t, filepath.Join(root, "README.md"), "ignored")

	w := New()
	var found []Found
	for f := range w.Walk(context.Background(), root, "") {
		found = append(found, f)
	}

	var bps, tks int
	for _, f := range found {
		switch f.Kind {
		case KindBlueprint:
			bps++
		case KindTickets:
			tks++
		}
	}
	require.Equal(t, 1, bps)
	require.Equal(t, 1, tks)
}

func TestWalk_RespectsCustomTicketsPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "custom", "a.tickets.json"), "{}")

	w := New()
	var found []Found
	for f := range w.Walk(context.Background(), root, "custom") {
		found = append(found, f)
	}
	require.Len(t, found, 1)
	require.Equal(t, KindTickets, found[0].Kind)
}

func TestWalk_ContextCancellationStopsEarly(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, filepath.Join(root, "m", fmt.Sprintf("x%d.bp", i)), "@module m\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New()
	count := 0
	for range w.Walk(ctx, root, "") {
		count++
	}
	require.LessOrEqual(t, count, 1)
}
