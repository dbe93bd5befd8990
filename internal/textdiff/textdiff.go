package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Patch returns diff-match-patch patch text turning before into after.
// Both sides are normalized first so line-ending and trailing-whitespace
// churn between fetches does not show up as a change. Identical inputs
// produce an empty string.
func Patch(before, after string) string {
	b, a := normalize(before), normalize(after)
	if b == a {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(b, a, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.PatchToText(dmp.PatchMake(b, diffs))
}

// Stats counts inserted and deleted runes between before and after.
func Stats(before, after string) (inserted, deleted int) {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(normalize(before), normalize(after), false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			deleted += len([]rune(d.Text))
		}
	}
	return inserted, deleted
}

// normalize trims trailing whitespace from each line and converts CRLF to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
