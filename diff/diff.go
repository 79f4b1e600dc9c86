// Package diff reconciles generated text with the copy held by a store.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/teranos/ypgen/internal/util"
)

// contextLines is the number of unchanged lines around each hunk
const contextLines = 3

// Diff returns a unified line diff from old to new, or nil when the two are
// identical. An absent old text is the same as an empty one, so Diff(nil, "")
// is nil.
func Diff(old *string, next string) *string {
	return Named(old, next, "stored", "generated")
}

// Named is Diff with explicit names for the two sides of the diff header
func Named(old *string, next string, fromName, toName string) *string {
	prior := util.Deref(old)
	if prior == next {
		return nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prior),
		B:        difflib.SplitLines(next),
		FromFile: fromName,
		ToFile:   toName,
		Context:  contextLines,
	})
	if err != nil || text == "" {
		// the texts differ even if no line hunk could be rendered
		text = fmt.Sprintf("--- %s\n+++ %s\n@@ content differs (%d -> %d bytes) @@\n", fromName, toName, len(prior), len(next))
	}
	return &text
}

// Changed reports whether old and new differ, with the same absent-equals-empty rule as Diff
func Changed(old *string, next string) bool {
	return util.Deref(old) != next
}

// wikiSpace is what MediaWiki strips from the end of page text on save
const wikiSpace = " \t\n\r\x00\x0b"

// AsStored returns text the way a wiki keeps it after a save, without
// trailing whitespace
func AsStored(text string) string {
	return strings.TrimRight(text, wikiSpace)
}

// Stat counts the lines added and deleted between two texts
type Stat struct {
	Added   int
	Deleted int
}

// Zero reports whether nothing changed
func (s Stat) Zero() bool {
	return s.Added == 0 && s.Deleted == 0
}

func (s Stat) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Deleted)
}

// StatOf computes the line statistics from old to new
func StatOf(old *string, next string) Stat {
	prior := util.Deref(old)
	if prior == next {
		return Stat{}
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(prior, next)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var stat Stat
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stat.Added += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			stat.Deleted += countLines(d.Text)
		}
	}
	return stat
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
