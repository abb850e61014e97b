package linediff

import (
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// timestampFormat matches GNU diff's file header timestamps.
const timestampFormat = "2006-01-02 15:04:05.000000000 -0700"

// renderOpCodes produces styled diff output from matcher opcodes. It returns
// the rendered text and the diff exit status: 0 when old and new are
// identical (in which case the text is empty, headers included), 1 when they
// differ.
func renderOpCodes(ops []difflib.OpCode, old, new []string, style Style) (string, int, error) {
	changed := false
	for _, op := range ops {
		if op.Tag != 'e' {
			changed = true
			break
		}
	}
	if !changed {
		return "", 0, nil
	}
	switch style.Format {
	case FormatNormal:
		return renderNormal(ops, old, new), 1, nil
	case FormatContext:
		return renderContext(groupOpCodes(ops, style.Context), old, new, style), 1, nil
	case FormatUnified:
		return renderUnified(groupOpCodes(ops, style.Context), old, new, style), 1, nil
	default:
		return "", 0, fmt.Errorf("linediff: unknown format %d", style.Format)
	}
}

func renderNormal(ops []difflib.OpCode, old, new []string) string {
	var b strings.Builder
	for _, op := range ops {
		switch op.Tag {
		case 'r':
			fmt.Fprintf(&b, "%sc%s\n", normalRange(op.I1, op.I2), normalRange(op.J1, op.J2))
		case 'd':
			fmt.Fprintf(&b, "%sd%d\n", normalRange(op.I1, op.I2), op.J1)
		case 'i':
			fmt.Fprintf(&b, "%da%s\n", op.I1, normalRange(op.J1, op.J2))
		default:
			continue
		}
		if op.Tag == 'r' || op.Tag == 'd' {
			for _, line := range old[op.I1:op.I2] {
				b.WriteString("< " + line + "\n")
			}
		}
		if op.Tag == 'r' {
			b.WriteString("---\n")
		}
		if op.Tag == 'r' || op.Tag == 'i' {
			for _, line := range new[op.J1:op.J2] {
				b.WriteString("> " + line + "\n")
			}
		}
	}
	return b.String()
}

// normalRange formats a 0-based half-open range in 1-based inclusive
// notation: [2,3) is "3", [2,4) is "3,4".
func normalRange(start, stop int) string {
	if stop-start <= 1 {
		return fmt.Sprintf("%d", stop)
	}
	return fmt.Sprintf("%d,%d", start+1, stop)
}

func renderUnified(groups [][]difflib.OpCode, old, new []string, style Style) string {
	var b strings.Builder
	if style.OldLabel != "" || style.NewLabel != "" {
		fmt.Fprintf(&b, "--- %s\n", headerLabel(style.OldLabel, style.OldTime))
		fmt.Fprintf(&b, "+++ %s\n", headerLabel(style.NewLabel, style.NewTime))
	}
	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", unifiedRange(first.I1, last.I2), unifiedRange(first.J1, last.J2))
		for _, op := range group {
			if op.Tag == 'e' {
				for _, line := range old[op.I1:op.I2] {
					b.WriteString(" " + line + "\n")
				}
				continue
			}
			if op.Tag == 'r' || op.Tag == 'd' {
				for _, line := range old[op.I1:op.I2] {
					b.WriteString("-" + line + "\n")
				}
			}
			if op.Tag == 'r' || op.Tag == 'i' {
				for _, line := range new[op.J1:op.J2] {
					b.WriteString("+" + line + "\n")
				}
			}
		}
	}
	return b.String()
}

func unifiedRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf("%d", beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}

func renderContext(groups [][]difflib.OpCode, old, new []string, style Style) string {
	prefix := map[byte]string{'i': "+ ", 'd': "- ", 'r': "! ", 'e': "  "}

	var b strings.Builder
	if style.OldLabel != "" || style.NewLabel != "" {
		fmt.Fprintf(&b, "*** %s\n", headerLabel(style.OldLabel, style.OldTime))
		fmt.Fprintf(&b, "--- %s\n", headerLabel(style.NewLabel, style.NewTime))
	}
	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		b.WriteString("***************\n")

		fmt.Fprintf(&b, "*** %s ****\n", contextRange(first.I1, last.I2))
		if opsTouchOld(group) {
			for _, op := range group {
				if op.Tag == 'i' {
					continue
				}
				for _, line := range old[op.I1:op.I2] {
					b.WriteString(prefix[op.Tag] + line + "\n")
				}
			}
		}

		fmt.Fprintf(&b, "--- %s ----\n", contextRange(first.J1, last.J2))
		if opsTouchNew(group) {
			for _, op := range group {
				if op.Tag == 'd' {
					continue
				}
				for _, line := range new[op.J1:op.J2] {
					b.WriteString(prefix[op.Tag] + line + "\n")
				}
			}
		}
	}
	return b.String()
}

func opsTouchOld(group []difflib.OpCode) bool {
	for _, op := range group {
		if op.Tag == 'r' || op.Tag == 'd' {
			return true
		}
	}
	return false
}

func opsTouchNew(group []difflib.OpCode) bool {
	for _, op := range group {
		if op.Tag == 'r' || op.Tag == 'i' {
			return true
		}
	}
	return false
}

func contextRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 0 {
		beginning--
	}
	if length <= 1 {
		return fmt.Sprintf("%d", beginning)
	}
	return fmt.Sprintf("%d,%d", beginning, beginning+length-1)
}

func headerLabel(label string, t time.Time) string {
	if t.IsZero() {
		return label
	}
	return label + "\t" + t.Format(timestampFormat)
}

// groupOpCodes splits opcodes into hunk groups, trimming equal stretches to
// at most n lines of context around each change. Pure-equal input produces
// no groups.
func groupOpCodes(ops []difflib.OpCode, n int) [][]difflib.OpCode {
	if n < 0 {
		n = 3
	}
	codes := make([]difflib.OpCode, len(ops))
	copy(codes, ops)
	if len(codes) > 0 && codes[0].Tag == 'e' {
		c := codes[0]
		codes[0] = difflib.OpCode{Tag: c.Tag, I1: max(c.I1, c.I2-n), I2: c.I2, J1: max(c.J1, c.J2-n), J2: c.J2}
	}
	if len(codes) > 0 && codes[len(codes)-1].Tag == 'e' {
		c := codes[len(codes)-1]
		codes[len(codes)-1] = difflib.OpCode{Tag: c.Tag, I1: c.I1, I2: min(c.I2, c.I1+n), J1: c.J1, J2: min(c.J2, c.J1+n)}
	}

	var groups [][]difflib.OpCode
	var group []difflib.OpCode
	for _, c := range codes {
		i1, i2, j1, j2 := c.I1, c.I2, c.J1, c.J2
		// A long equal stretch ends the current group and starts the next.
		if c.Tag == 'e' && i2-i1 > 2*n {
			group = append(group, difflib.OpCode{Tag: c.Tag, I1: i1, I2: min(i2, i1+n), J1: j1, J2: min(j2, j1+n)})
			groups = append(groups, group)
			group = nil
			i1, j1 = max(i1, i2-n), max(j1, j2-n)
		}
		group = append(group, difflib.OpCode{Tag: c.Tag, I1: i1, I2: i2, J1: j1, J2: j2})
	}
	if len(group) > 0 && !(len(group) == 1 && group[0].Tag == 'e') {
		groups = append(groups, group)
	}
	return groups
}
