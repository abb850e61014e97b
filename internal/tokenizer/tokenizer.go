// Package tokenizer splits text into word tokens separated by runs of
// separator text, preserving every byte of the input.
//
// A tokenized text has three parts: a lead (separator text before the first
// word), a list of tokens (each a word plus the separator text that follows
// it), and a tail (separator text after the last word). Concatenating
// lead + tokens + tail reproduces the input exactly, which lets callers
// rebuild the original text, or a marked-up variant of it, from tokens alone.
//
// Separators are described by a regular expression. A match of zero width
// splits two words without contributing any separator text; the end of the
// input never counts as a zero-width separator. When an alternation can match
// both a real separator and a zero-width boundary at the same offset, list
// the real separator first: the regexp package prefers earlier alternatives.
package tokenizer

import (
	"fmt"
	"regexp"
)

// Separator patterns for the built-in splitting modes.
const (
	// DefaultSeparatorPattern splits at whitespace runs only.
	DefaultSeparatorPattern = `\s+`

	// WordBoundaryPattern splits at whitespace runs and at word boundaries,
	// so punctuation becomes its own token. The \s+ alternative must come
	// first so a whitespace run is consumed as separator text rather than
	// split off as a zero-width boundary.
	WordBoundaryPattern = `\s+|\b`
)

// Token is one word and the separator text that follows it. Sep is empty when
// the next word abuts this one (a zero-width separator matched between them)
// and for the last token of a text.
type Token struct {
	Word string
	Sep  string
}

// Text concatenates tokens back into the text they were scanned from.
func Text(tokens []Token) string {
	n := 0
	for _, t := range tokens {
		n += len(t.Word) + len(t.Sep)
	}
	buf := make([]byte, 0, n)
	for _, t := range tokens {
		buf = append(buf, t.Word...)
		buf = append(buf, t.Sep...)
	}
	return string(buf)
}

// Sequence is one tokenized text with a consumption cursor.
//
// Invariants:
//   - Lead() + Text(all tokens) + Tail() equals the input text byte for byte.
//   - The cursor starts at position 1 and only moves forward; Take and Rest
//     consume tokens, Words and the accessors do not.
type Sequence struct {
	lead   string
	tail   string
	tokens []Token
	pos    int // 1-based position of the next unconsumed token
}

func newSequence(lead, tail string, tokens []Token) *Sequence {
	return &Sequence{lead: lead, tail: tail, tokens: tokens, pos: 1}
}

// Tokenize scans text using separator as the separator regular expression.
// It returns an error if separator does not compile, or if scanning stalls
// without consuming input (possible with degenerate patterns).
func Tokenize(text, separator string) (*Sequence, error) {
	re, err := regexp.Compile(separator)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: separator: %w", err)
	}
	leadRe, err := regexp.Compile(`\A(?:` + separator + `)`)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: separator: %w", err)
	}
	tailRe, err := regexp.Compile(`(?:` + separator + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: separator: %w", err)
	}

	lead, body, tail := trimEdges(leadRe, tailRe, text)
	tokens, err := scan(re, body)
	if err != nil {
		return nil, err
	}
	return newSequence(lead, tail, tokens), nil
}

// trimEdges peels separator matches off both ends of text. Edge separator
// text belongs to no token; it is reattached verbatim when output is built.
func trimEdges(leadRe, tailRe *regexp.Regexp, text string) (lead, body, tail string) {
	body = text
	for {
		m := leadRe.FindStringIndex(body)
		if m == nil || m[1] == 0 {
			break
		}
		lead += body[:m[1]]
		body = body[m[1]:]
	}
	for {
		m := tailRe.FindStringIndex(body)
		if m == nil || m[0] == m[1] {
			break
		}
		tail = body[m[0]:] + tail
		body = body[:m[0]]
	}
	return lead, body, tail
}

// scan walks the separator matches in body, closing a token at each one.
// A zero-width match at the start of body opens no empty word, and one at
// the end of body is not a separator at all. Matches behind the cursor stall
// the scan and are an error; the regexp package's find-all iteration already
// forces progress past empty matches, so this should never fire.
func scan(re *regexp.Regexp, body string) ([]Token, error) {
	var tokens []Token
	contentStart := 0
	for _, m := range re.FindAllStringIndex(body, -1) {
		start, end := m[0], m[1]
		if start < contentStart {
			return nil, fmt.Errorf("tokenizer: separator %q makes no progress at offset %d", re.String(), start)
		}
		if start == end {
			if start == contentStart || start == len(body) {
				continue
			}
			tokens = append(tokens, Token{Word: body[contentStart:start]})
			contentStart = start
			continue
		}
		tokens = append(tokens, Token{Word: body[contentStart:start], Sep: body[start:end]})
		contentStart = end
	}
	if contentStart < len(body) {
		tokens = append(tokens, Token{Word: body[contentStart:]})
	}
	return tokens, nil
}

// Len returns the total number of tokens, consumed or not.
func (s *Sequence) Len() int { return len(s.tokens) }

// Pos returns the 1-based position of the next unconsumed token. After the
// whole sequence is consumed it is Len()+1.
func (s *Sequence) Pos() int { return s.pos }

// Lead returns the separator text preceding the first word.
func (s *Sequence) Lead() string { return s.lead }

// Tail returns the separator text following the last word.
func (s *Sequence) Tail() string { return s.tail }

// Words returns the word of every token in order, ignoring the cursor.
func (s *Sequence) Words() []string {
	words := make([]string, len(s.tokens))
	for i, t := range s.tokens {
		words[i] = t.Word
	}
	return words
}

// Take consumes the next n tokens and returns them. It fails if fewer than n
// tokens remain; the cursor is unchanged on failure.
func (s *Sequence) Take(n int) ([]Token, error) {
	if n < 0 {
		return nil, fmt.Errorf("tokenizer: take %d tokens", n)
	}
	idx := s.pos - 1
	if idx+n > len(s.tokens) {
		return nil, fmt.Errorf("tokenizer: take %d tokens at position %d: only %d left", n, s.pos, len(s.tokens)-idx)
	}
	taken := s.tokens[idx : idx+n]
	s.pos += n
	return taken, nil
}

// Rest consumes and returns all remaining tokens.
func (s *Sequence) Rest() []Token {
	rest := s.tokens[s.pos-1:]
	s.pos = len(s.tokens) + 1
	return rest
}
