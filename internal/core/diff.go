package core

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResult is a line diff between two renderings of the same document.
type DiffResult struct {
	Text    string
	Changes int // inserted plus deleted lines
}

// GenerateDiff produces a +/- line diff between current and desired content.
// Unchanged lines are kept as context, prefixed by two spaces.
func GenerateDiff(current, desired string) DiffResult {
	dmp := diffmatchpatch.New()

	a, b, c := dmp.DiffLinesToChars(current, desired)
	diffs := dmp.DiffMain(a, b, false)
	result := dmp.DiffCharsToLines(diffs, c)

	var buff bytes.Buffer
	changes := 0
	for _, diff := range result {
		prefix := "  "
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.Split(diff.Text, "\n") {
			if line == "" {
				continue
			}
			if diff.Type != diffmatchpatch.DiffEqual {
				changes++
			}
			buff.WriteString(prefix + line + "\n")
		}
	}
	return DiffResult{Text: buff.String(), Changes: changes}
}
