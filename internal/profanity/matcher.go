package profanity

import "github.com/deepsafe/safetext-go/internal/wordlist"

// Match is a located occurrence of a listed term in the input text.
// WordIndex is the index of the first token in the match; Start and End are
// byte offsets of the matched span in the original text.
type Match struct {
	Term      string `json:"term"`
	WordIndex int    `json:"word_index"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Find scans the token sequence against vocab and returns matches in order
// of occurrence. At each position the longest listed phrase wins and the
// scan advances past the consumed tokens, so no two matches overlap and a
// phrase is reported instead of its separately-listed first word.
func Find(tokens []Token, vocab *wordlist.Vocabulary) []Match {
	if vocab.Empty() || len(tokens) == 0 {
		return nil
	}

	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Text
	}

	var matches []Match
	maxWords := vocab.MaxPhraseWords()
	for i := 0; i < len(tokens); {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		term, consumed, ok := vocab.LongestMatch(words[i:end])
		if !ok {
			i++
			continue
		}
		matches = append(matches, Match{
			Term:      term.Raw,
			WordIndex: i,
			Start:     tokens[i].Start,
			End:       tokens[i+consumed-1].End,
		})
		i += consumed
	}
	return matches
}
