package tokenizer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// TokenizeWords splits text at Unicode word boundaries (UAX #29) instead of
// a separator expression. Whitespace segments become separator text attached
// to the preceding token; every other segment, punctuation included, becomes
// a token of its own. Like Tokenize, the result reproduces text byte for
// byte.
func TokenizeWords(text string) *Sequence {
	body := strings.TrimLeftFunc(text, unicode.IsSpace)
	lead := text[:len(text)-len(body)]
	trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
	tail := body[len(trimmed):]
	body = trimmed

	var tokens []Token
	iter := words.FromString(body)
	for iter.Next() {
		seg := iter.Value()
		if isSpaceOnly(seg) {
			// body starts with a non-space rune, so a space-only segment
			// always follows some token. Adjacent whitespace segments (say
			// a space then a newline) merge into one separator.
			tokens[len(tokens)-1].Sep += seg
			continue
		}
		tokens = append(tokens, Token{Word: seg})
	}
	return newSequence(lead, tail, tokens)
}

func isSpaceOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
