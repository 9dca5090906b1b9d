package query

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a three-line-context unified diff between two
// texts, used for the "create ticket" code action's stub preview.
// Conflict diagnostics carry no diff.
func unifiedDiff(fromLabel, toLabel, original, modified string) string {
	if original == modified {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        strings.Split(original, "\n"),
		B:        strings.Split(modified, "\n"),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- %s\n+++ %s\n@@ changes @@\n%d bytes -> %d bytes",
			fromLabel, toLabel, len(original), len(modified))
	}
	return text
}
