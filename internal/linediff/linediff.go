// Package linediff turns two sequences of lines into classic diff hunks and
// into styled diff output (normal, context, or unified format).
//
// Representation: a Hunk is one contiguous difference in classic diff
// notation, "<old range><op><new range>" with 1-based inclusive ranges. The
// notation is asymmetric: an add hunk's old range names the line before the
// insertion point, and a delete hunk's new range names the line before the
// deletion, so "2a3" means new line 3 was inserted after old line 2.
//
// Oracles: an Oracle answers diff questions about two line sequences. The
// in-process EngineOracle computes them with a pluggable matcher Engine; the
// CommandOracle shells out to an external diff program and parses or relays
// its output. Callers choose the oracle, then treat both identically.
//
// Lines here are opaque strings: callers may pass file lines or, as the
// worddiff package does, one word per element.
package linediff

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Op identifies a hunk operation.
type Op byte

// Operations in classic diff notation.
const (
	OpAdd    Op = 'a'
	OpChange Op = 'c'
	OpDelete Op = 'd'
)

// Hunk is one contiguous difference between two line sequences.
//
// Invariants:
//   - OldStart <= OldEnd and NewStart <= NewEnd.
//   - Ranges are 1-based, except that an add may carry OldStart == 0 (insert
//     before the first line) and a delete NewStart == 0 (delete of the first
//     lines).
//   - An add consumes no old lines: OldStart == OldEnd. A delete consumes no
//     new lines: NewStart == NewEnd.
type Hunk struct {
	OldStart int
	OldEnd   int
	Op       Op
	NewStart int
	NewEnd   int
}

// String renders the hunk in classic diff notation, such as "3c3,4".
func (h Hunk) String() string {
	return rangeString(h.OldStart, h.OldEnd) + string(h.Op) + rangeString(h.NewStart, h.NewEnd)
}

func rangeString(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(end)
}

func (h Hunk) validate() error {
	switch h.Op {
	case OpAdd, OpChange, OpDelete:
	default:
		return fmt.Errorf("linediff: hunk %s: unknown op %q", h, h.Op)
	}
	if h.OldEnd < h.OldStart || h.NewEnd < h.NewStart {
		return fmt.Errorf("linediff: hunk %s: backwards range", h)
	}
	if h.Op != OpAdd && h.OldStart < 1 {
		return fmt.Errorf("linediff: hunk %s: old range must start at line 1", h)
	}
	if h.Op != OpDelete && h.NewStart < 1 {
		return fmt.Errorf("linediff: hunk %s: new range must start at line 1", h)
	}
	if h.Op == OpAdd && h.OldEnd != h.OldStart {
		return fmt.Errorf("linediff: hunk %s: add must not span old lines", h)
	}
	if h.Op == OpDelete && h.NewEnd != h.NewStart {
		return fmt.Errorf("linediff: hunk %s: delete must not span new lines", h)
	}
	return nil
}

var hunkRe = regexp.MustCompile(`^(\d+)(?:,(\d+))?([acd])(\d+)(?:,(\d+))?$`)

// ParseHunks extracts hunks from normal-format diff output. Lines that do
// not look like hunk headers ("< " lines, "---", anything else) are skipped;
// a line that parses as a header but describes an impossible range is an
// error.
func ParseHunks(output string) ([]Hunk, error) {
	var hunks []Hunk
	for _, line := range strings.Split(output, "\n") {
		m := hunkRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		h, err := hunkFromMatch(m)
		if err != nil {
			return nil, err
		}
		if err := h.validate(); err != nil {
			return nil, err
		}
		hunks = append(hunks, h)
	}
	return hunks, nil
}

func hunkFromMatch(m []string) (Hunk, error) {
	atoi := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("linediff: hunk %q: %w", m[0], err)
		}
		return n, nil
	}

	var h Hunk
	var err error
	if h.OldStart, err = atoi(m[1]); err != nil {
		return Hunk{}, err
	}
	h.OldEnd = h.OldStart
	if m[2] != "" {
		if h.OldEnd, err = atoi(m[2]); err != nil {
			return Hunk{}, err
		}
	}
	h.Op = Op(m[3][0])
	if h.NewStart, err = atoi(m[4]); err != nil {
		return Hunk{}, err
	}
	h.NewEnd = h.NewStart
	if m[5] != "" {
		if h.NewEnd, err = atoi(m[5]); err != nil {
			return Hunk{}, err
		}
	}
	return h, nil
}

// Format selects the layout of rendered diff output.
type Format int

const (
	FormatNormal  Format = iota // classic "<range><op><range>" hunks
	FormatContext               // context format ("*** / ---" sections)
	FormatUnified               // unified format ("@@" hunks)
)

// Style describes how a rendered diff should look.
type Style struct {
	Format  Format
	Context int // unchanged lines around each change; context and unified formats only

	// File headers. Labels empty means no header lines are emitted.
	OldLabel string
	NewLabel string
	OldTime  time.Time
	NewTime  time.Time
}

// Oracle answers diff questions about two line sequences. Hunks reports the
// differences as classic hunks; Render produces styled diff output plus a
// diff exit status (0 when the sequences match, 1 when they differ).
type Oracle interface {
	Hunks(ctx context.Context, old, new []string) ([]Hunk, error)
	Render(ctx context.Context, old, new []string, style Style) (string, int, error)
}
