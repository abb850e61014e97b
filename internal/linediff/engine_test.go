package linediff

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineHunks(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want []Hunk
	}{
		{
			name: "insert",
			old:  "the quick fox",
			new:  "the quick brown fox",
			want: []Hunk{{OldStart: 2, OldEnd: 2, Op: OpAdd, NewStart: 3, NewEnd: 3}},
		},
		{
			name: "change",
			old:  "alpha beta",
			new:  "alpha gamma",
			want: []Hunk{{OldStart: 2, OldEnd: 2, Op: OpChange, NewStart: 2, NewEnd: 2}},
		},
		{
			name: "delete",
			old:  "one two three",
			new:  "one three",
			want: []Hunk{{OldStart: 2, OldEnd: 2, Op: OpDelete, NewStart: 1, NewEnd: 1}},
		},
		{
			name: "equal",
			old:  "same words here",
			new:  "same words here",
			want: nil,
		},
		{
			name: "insert at start",
			old:  "b c",
			new:  "a b c",
			want: []Hunk{{OldStart: 0, OldEnd: 0, Op: OpAdd, NewStart: 1, NewEnd: 1}},
		},
		{
			name: "delete at start",
			old:  "a b c",
			new:  "b c",
			want: []Hunk{{OldStart: 1, OldEnd: 1, Op: OpDelete, NewStart: 0, NewEnd: 0}},
		},
	}
	engines := map[string]Engine{
		"default": DefaultEngine{},
		"minimal": MinimalEngine{},
	}
	for engineName, engine := range engines {
		for _, tt := range tests {
			t.Run(engineName+"/"+tt.name, func(t *testing.T) {
				old := strings.Fields(tt.old)
				new := strings.Fields(tt.new)
				got := HunksFromOpCodes(engine.OpCodes(old, new))
				require.Equal(t, tt.want, got)
			})
		}
	}
}

func TestEngineOpCodesCoverBothSides(t *testing.T) {
	old := strings.Fields("a b c d e f")
	new := strings.Fields("a x c e f g")
	for name, engine := range map[string]Engine{"default": DefaultEngine{}, "minimal": MinimalEngine{}} {
		t.Run(name, func(t *testing.T) {
			ops := engine.OpCodes(old, new)
			oldPos, newPos := 0, 0
			for _, op := range ops {
				require.Equal(t, oldPos, op.I1, "old ranges must be contiguous")
				require.Equal(t, newPos, op.J1, "new ranges must be contiguous")
				oldPos, newPos = op.I2, op.J2
			}
			require.Equal(t, len(old), oldPos)
			require.Equal(t, len(new), newPos)
		})
	}
}

func TestMinimalEngineEmptySides(t *testing.T) {
	engine := MinimalEngine{}
	require.Empty(t, engine.OpCodes(nil, nil))

	hunks := HunksFromOpCodes(engine.OpCodes(nil, []string{"a", "b"}))
	require.Equal(t, []Hunk{{OldStart: 0, OldEnd: 0, Op: OpAdd, NewStart: 1, NewEnd: 2}}, hunks)

	hunks = HunksFromOpCodes(engine.OpCodes([]string{"a", "b"}, nil))
	require.Equal(t, []Hunk{{OldStart: 1, OldEnd: 2, Op: OpDelete, NewStart: 0, NewEnd: 0}}, hunks)
}

func TestEngineOracle(t *testing.T) {
	oracle := &EngineOracle{}
	hunks, err := oracle.Hunks(context.Background(), strings.Fields("one two"), strings.Fields("one two"))
	require.NoError(t, err)
	require.Empty(t, hunks)

	out, status, err := oracle.Render(context.Background(), strings.Fields("one two"), strings.Fields("one three"), Style{Format: FormatNormal})
	require.NoError(t, err)
	require.Equal(t, 1, status)
	require.Equal(t, "2c2\n< two\n---\n> three\n", out)

	out, status, err = oracle.Render(context.Background(), strings.Fields("same"), strings.Fields("same"), Style{Format: FormatUnified, OldLabel: "a", NewLabel: "b"})
	require.NoError(t, err)
	require.Equal(t, 0, status)
	require.Empty(t, out, "identical inputs produce no output, headers included")
}
