// Package worddiff compares two texts word by word.
//
// Both texts are tokenized into words (the tokenizer package), the word
// sequences are compared by a line-diff oracle (the linediff package), and
// the resulting hunks are replayed over the original tokens. Inline mode
// emits the new text with deleted words wrapped in delete markers and
// inserted words in insert markers, whitespace preserved. Structural mode
// goes one step further: it projects the marked-up text into a delete-only
// and an insert-only view, then renders a styled word-per-line diff between
// the two views, which reports word changes free of any line-wrapping noise.
//
// The marked-up text prefers the new side: unchanged words and their
// trailing separators come from the new text, except that the separator just
// before a delete region comes from the old text (the new text may not have
// one there). Reverse flips that exception.
package worddiff

import (
	"context"
	"fmt"
	"strings"

	"github.com/codalotl/adiff/internal/linediff"
	"github.com/codalotl/adiff/internal/simplelogger"
	"github.com/codalotl/adiff/internal/tokenizer"
)

// Markers are the strings wrapped around changed regions in inline output.
type Markers struct {
	StartDelete string
	EndDelete   string
	StartInsert string
	EndInsert   string
}

// DefaultMarkers returns wdiff's classic markers: [-deleted-] {+inserted+}.
func DefaultMarkers() Markers {
	return Markers{StartDelete: "[-", EndDelete: "-]", StartInsert: "{+", EndInsert: "+}"}
}

// withDefaults substitutes the classic markers for a zero Markers. A non-zero
// Markers is used verbatim, empty fields included, so callers can suppress
// individual delimiters.
func (m Markers) withDefaults() Markers {
	if m == (Markers{}) {
		return DefaultMarkers()
	}
	return m
}

// tripled makes region boundaries survive structural mode's re-tokenization:
// a tripled marker is too distinctive to occur in ordinary text.
func (m Markers) tripled() Markers {
	return Markers{
		StartDelete: strings.Repeat(m.StartDelete, 3),
		EndDelete:   strings.Repeat(m.EndDelete, 3),
		StartInsert: strings.Repeat(m.StartInsert, 3),
		EndInsert:   strings.Repeat(m.EndInsert, 3),
	}
}

// Options configures a word diff.
type Options struct {
	Markers      Markers         // a zero Markers falls back to DefaultMarkers
	IgnoreCase   bool            // compare words case-insensitively
	Reverse      bool            // prefer the new text's separator before delete regions
	Separator    string          // separator regex; empty means whitespace runs
	UnicodeWords bool            // split at UAX #29 word boundaries instead of Separator
	Oracle       linediff.Oracle // nil means the in-process default engine
}

func (o Options) sequence(text string) (*tokenizer.Sequence, error) {
	if o.UnicodeWords {
		return tokenizer.TokenizeWords(text), nil
	}
	sep := o.Separator
	if sep == "" {
		sep = tokenizer.DefaultSeparatorPattern
	}
	return tokenizer.Tokenize(text, sep)
}

func (o Options) oracle() linediff.Oracle {
	if o.Oracle != nil {
		return o.Oracle
	}
	return &linediff.EngineOracle{}
}

func foldWords(seq *tokenizer.Sequence, fold bool) []string {
	words := seq.Words()
	if !fold {
		return words
	}
	folded := make([]string, len(words))
	for i, w := range words {
		folded[i] = strings.ToLower(w)
	}
	return folded
}

// Inline returns the new text annotated with delete and insert markers
// showing how it differs from the old text, word by word.
func Inline(ctx context.Context, oldText, newText string, opts Options) (string, error) {
	oldSeq, err := opts.sequence(oldText)
	if err != nil {
		return "", err
	}
	newSeq, err := opts.sequence(newText)
	if err != nil {
		return "", err
	}
	hunks, err := opts.oracle().Hunks(ctx, foldWords(oldSeq, opts.IgnoreCase), foldWords(newSeq, opts.IgnoreCase))
	if err != nil {
		return "", err
	}
	simplelogger.Log("worddiff: inline: %d old words, %d new words, %d hunks", oldSeq.Len(), newSeq.Len(), len(hunks))

	marked, err := annotate(oldSeq, newSeq, hunks, opts.Markers.withDefaults(), opts.Reverse)
	if err != nil {
		return "", err
	}
	return newSeq.Lead() + marked + newSeq.Tail(), nil
}

// Structural renders a styled diff of the word-level changes between the two
// texts. It returns the output and the diff exit status: 0 when the texts
// have no word-level differences, 1 when they do.
func Structural(ctx context.Context, oldText, newText string, style linediff.Style, opts Options) (string, int, error) {
	oldSeq, err := opts.sequence(oldText)
	if err != nil {
		return "", 0, err
	}
	newSeq, err := opts.sequence(newText)
	if err != nil {
		return "", 0, err
	}
	hunks, err := opts.oracle().Hunks(ctx, foldWords(oldSeq, opts.IgnoreCase), foldWords(newSeq, opts.IgnoreCase))
	if err != nil {
		return "", 0, err
	}

	markers := opts.Markers.withDefaults()
	if markers.StartDelete == "" || markers.EndDelete == "" || markers.StartInsert == "" || markers.EndInsert == "" {
		return "", 0, fmt.Errorf("worddiff: structural mode needs non-empty markers")
	}
	markers = markers.tripled()
	marked, err := annotate(oldSeq, newSeq, hunks, markers, opts.Reverse)
	if err != nil {
		return "", 0, err
	}
	insertView, deleteView, err := project(marked, markers)
	if err != nil {
		return "", 0, err
	}

	// The views are re-tokenized with the same separator configuration, so
	// the final diff is across words, one per output line.
	delSeq, err := opts.sequence(deleteView)
	if err != nil {
		return "", 0, err
	}
	insSeq, err := opts.sequence(insertView)
	if err != nil {
		return "", 0, err
	}
	simplelogger.Log("worddiff: structural: %d hunks, %d -> %d view words", len(hunks), delSeq.Len(), insSeq.Len())
	return opts.oracle().Render(ctx, delSeq.Words(), insSeq.Words(), style)
}
