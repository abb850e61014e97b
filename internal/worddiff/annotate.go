package worddiff

import (
	"fmt"
	"strings"

	"github.com/codalotl/adiff/internal/linediff"
	"github.com/codalotl/adiff/internal/tokenizer"
)

// annotate replays hunks over the two token sequences in order, producing
// the new text's body with changed regions wrapped in markers. Region bodies
// are the consumed tokens verbatim, separators included, so stripping insert
// regions yields the old body and stripping delete regions the new body.
//
// Before each hunk both cursors catch up to the hunk's start. The hunks
// describe the same unchanged words on both sides, so the two catch-up
// distances must agree; a mismatch means the hunks do not belong to these
// sequences. Catch-up text is taken from the new side, except that the final
// separator before a delete region is taken from the old side: the new text
// has no word there, so its separator may be missing entirely. Reverse keeps
// the new side's separator instead.
func annotate(old, new *tokenizer.Sequence, hunks []linediff.Hunk, m Markers, reverse bool) (string, error) {
	var b strings.Builder
	for _, h := range hunks {
		// In classic notation an add names the old line before the
		// insertion, and a delete the new line before the deletion. Bump
		// those to the first position not yet consumed.
		oldStart, newStart := h.OldStart, h.NewStart
		if h.Op == linediff.OpAdd {
			oldStart++
		}
		if h.Op == linediff.OpDelete {
			newStart++
		}

		oldCatch := oldStart - old.Pos()
		newCatch := newStart - new.Pos()
		if oldCatch != newCatch {
			return "", fmt.Errorf("worddiff: hunk %s: catch-up mismatch (%d old, %d new)", h, oldCatch, newCatch)
		}
		if oldCatch < 0 {
			return "", fmt.Errorf("worddiff: hunk %s: overlaps tokens already consumed at position %d", h, old.Pos())
		}
		oldRun, err := old.Take(oldCatch)
		if err != nil {
			return "", fmt.Errorf("worddiff: hunk %s: %w", h, err)
		}
		newRun, err := new.Take(newCatch)
		if err != nil {
			return "", fmt.Errorf("worddiff: hunk %s: %w", h, err)
		}
		switch {
		case len(newRun) == 0:
		case h.Op == linediff.OpAdd || reverse:
			b.WriteString(tokenizer.Text(newRun))
		default:
			b.WriteString(tokenizer.Text(newRun[:len(newRun)-1]))
			b.WriteString(newRun[len(newRun)-1].Word)
			b.WriteString(oldRun[len(oldRun)-1].Sep)
		}

		if h.Op == linediff.OpChange || h.Op == linediff.OpDelete {
			body, err := old.Take(h.OldEnd - h.OldStart + 1)
			if err != nil {
				return "", fmt.Errorf("worddiff: hunk %s: %w", h, err)
			}
			b.WriteString(m.StartDelete)
			b.WriteString(tokenizer.Text(body))
			b.WriteString(m.EndDelete)
		}
		if h.Op == linediff.OpChange || h.Op == linediff.OpAdd {
			body, err := new.Take(h.NewEnd - h.NewStart + 1)
			if err != nil {
				return "", fmt.Errorf("worddiff: hunk %s: %w", h, err)
			}
			b.WriteString(m.StartInsert)
			b.WriteString(tokenizer.Text(body))
			b.WriteString(m.EndInsert)
		}
	}
	b.WriteString(tokenizer.Text(new.Rest()))
	return b.String(), nil
}
