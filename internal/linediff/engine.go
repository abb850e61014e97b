package linediff

import (
	"context"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Engine computes matcher opcodes between two line sequences. Opcodes use
// difflib's convention: 0-based half-open ranges with tags 'e' (equal),
// 'r' (replace), 'd' (delete), and 'i' (insert).
type Engine interface {
	OpCodes(old, new []string) []difflib.OpCode
}

// DefaultEngine matches with difflib's SequenceMatcher. It tends to produce
// readable diffs and is the default for all styles.
type DefaultEngine struct{}

func (DefaultEngine) OpCodes(old, new []string) []difflib.OpCode {
	return difflib.NewMatcher(old, new).GetOpCodes()
}

// MinimalEngine matches with Myers' algorithm via go-diff, which yields a
// minimal edit script. Lines are interned as runes so the rune-based matcher
// can compare whole lines at once, then its output is regrouped into
// difflib-style opcodes.
type MinimalEngine struct{}

func (MinimalEngine) OpCodes(old, new []string) []difflib.OpCode {
	ids := make(map[string]rune)
	intern := func(lines []string) []rune {
		encoded := make([]rune, len(lines))
		for i, line := range lines {
			id, ok := ids[line]
			if !ok {
				id = rune(len(ids) + 1)
				// Skip the surrogate range: those runes do not survive the
				// []rune <-> string conversions inside go-diff.
				if id >= 0xD800 {
					id += 0x800
				}
				ids[line] = id
			}
			encoded[i] = id
		}
		return encoded
	}
	rOld := intern(old)
	rNew := intern(new)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(rOld, rNew, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var ops []difflib.OpCode
	oldPos, newPos := 0, 0
	pendingDel, pendingIns := 0, 0
	flush := func() {
		if pendingDel == 0 && pendingIns == 0 {
			return
		}
		op := difflib.OpCode{I1: oldPos, I2: oldPos + pendingDel, J1: newPos, J2: newPos + pendingIns}
		switch {
		case pendingDel > 0 && pendingIns > 0:
			op.Tag = 'r'
		case pendingDel > 0:
			op.Tag = 'd'
		default:
			op.Tag = 'i'
		}
		ops = append(ops, op)
		oldPos += pendingDel
		newPos += pendingIns
		pendingDel, pendingIns = 0, 0
	}
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			ops = append(ops, difflib.OpCode{Tag: 'e', I1: oldPos, I2: oldPos + n, J1: newPos, J2: newPos + n})
			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			pendingDel += n
		case diffmatchpatch.DiffInsert:
			pendingIns += n
		}
	}
	flush()
	return ops
}

// HunksFromOpCodes converts matcher opcodes to classic hunks, translating
// difflib's half-open 0-based ranges into diff's 1-based inclusive notation.
func HunksFromOpCodes(ops []difflib.OpCode) []Hunk {
	var hunks []Hunk
	for _, op := range ops {
		switch op.Tag {
		case 'r':
			hunks = append(hunks, Hunk{
				OldStart: op.I1 + 1, OldEnd: op.I2,
				Op:       OpChange,
				NewStart: op.J1 + 1, NewEnd: op.J2,
			})
		case 'd':
			hunks = append(hunks, Hunk{
				OldStart: op.I1 + 1, OldEnd: op.I2,
				Op:       OpDelete,
				NewStart: op.J1, NewEnd: op.J1,
			})
		case 'i':
			hunks = append(hunks, Hunk{
				OldStart: op.I1, OldEnd: op.I1,
				Op:       OpAdd,
				NewStart: op.J1 + 1, NewEnd: op.J2,
			})
		}
	}
	return hunks
}

// EngineOracle computes diffs in-process.
type EngineOracle struct {
	Engine Engine // nil means DefaultEngine
}

func (o *EngineOracle) engine() Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return DefaultEngine{}
}

func (o *EngineOracle) Hunks(_ context.Context, old, new []string) ([]Hunk, error) {
	return HunksFromOpCodes(o.engine().OpCodes(old, new)), nil
}

func (o *EngineOracle) Render(_ context.Context, old, new []string, style Style) (string, int, error) {
	return renderOpCodes(o.engine().OpCodes(old, new), old, new, style)
}
