package profanity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a single word extracted from input text. Start and End are byte
// offsets into the original string, end-exclusive, so text[Start:End] == Raw.
type Token struct {
	Text  string // lowercased, used for matching
	Raw   string // original spelling
	Index int    // 0-based position in the token sequence
	Start int
	End   int
}

// Tokenize splits text on Unicode whitespace and strips adjacent punctuation
// from word boundaries, so "word." yields the token "word" with a span that
// excludes the dot. Tokens that are punctuation-only are dropped and indices
// stay dense. Empty input yields an empty sequence.
func Tokenize(text string) []Token {
	var tokens []Token

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		end := i
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if unicode.IsSpace(r) {
				break
			}
			end += size
		}

		start, stop := trimBoundaries(text, i, end)
		if start < stop {
			raw := text[start:stop]
			tokens = append(tokens, Token{
				Text:  strings.ToLower(raw),
				Raw:   raw,
				Index: len(tokens),
				Start: start,
				End:   stop,
			})
		}
		i = end
	}

	return tokens
}

// isWordRune reports whether r counts as part of a word for boundary
// trimming: letters, numbers, combining marks, and connector punctuation
// such as underscore. Hyphens and apostrophes inside a token survive because
// only leading and trailing runes are trimmed.
func isWordRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		unicode.In(r, unicode.Mn, unicode.Pc)
}

// trimBoundaries narrows [start,end) to exclude leading and trailing
// non-word runes.
func trimBoundaries(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if isWordRune(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if isWordRune(r) {
			break
		}
		end -= size
	}
	return start, end
}
