package query

import (
	"fmt"

	"github.com/oxhq/blueprint-ls/core"
	"github.com/oxhq/blueprint-ls/internal/engine"
	"github.com/oxhq/blueprint-ls/internal/index"
)

// CodeAction is a single proposed fix, LSP-code-action-shaped.
type CodeAction struct {
	Title   string
	Edits   []TextEdit
	Preview string // unified diff for "create ticket"-style stub actions
}

// TextEdit replaces the text at Location with NewText.
type TextEdit struct {
	Location core.Location
	NewText  string
}

// FixTypoActions proposes "fix typo" quick-fixes for an unresolved
// reference, using the best partial match plus a small edit-distance
// (<=2) search over sibling names (spec.md §4.9 Code actions).
func FixTypoActions(snap *engine.Snapshot, e index.Edge) []CodeAction {
	var out []CodeAction

	res := snap.Index.ResolveReference(e.To, e.FileURI)
	if res.PartialPrefix != "" {
		for _, child := range res.Children {
			if editDistance(lastSegment(e.To), child.Name) <= 2 {
				out = append(out, CodeAction{
					Title: fmt.Sprintf("Change reference to %q", child.Path),
					Edits: []TextEdit{{Location: e.Location, NewText: child.Path}},
				})
			}
		}
	}
	return out
}

// CreateTicketAction proposes a "create ticket" action for a requirement
// with no matched tickets: it emits a textual ticket stub bound to the
// requirement path (spec.md §4.9 Code actions).
func CreateTicketAction(reqPath, ticketFilePath string) CodeAction {
	stub := fmt.Sprintf(`{"id": "TODO", "ref": %q, "description": "", "status": "pending", "constraints_satisfied": []}`, reqPath)
	return CodeAction{
		Title:   fmt.Sprintf("Create ticket for %s", reqPath),
		Preview: unifiedDiff(ticketFilePath, ticketFilePath+" (proposed)", "", stub),
	}
}

func lastSegment(path string) string {
	parts := core.SplitPath(path)
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}

// editDistance is a standard Levenshtein distance over two short
// identifiers (sibling-name candidates are never long enough to warrant
// anything fancier).
func editDistance(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			cur[j] = min
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
