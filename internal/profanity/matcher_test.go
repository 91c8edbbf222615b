package profanity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsafe/safetext-go/internal/wordlist"
)

func TestFind_EmptyVocabulary(t *testing.T) {
	v := wordlist.New("en", nil)
	assert.Empty(t, Find(Tokenize("any text at all"), v))
	assert.Empty(t, Find(nil, v))
}

func TestFind_SingleWord(t *testing.T) {
	v := wordlist.New("en", []string{"damn"})
	text := "Well, damn. That went badly."

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "damn", m.Term)
	assert.Equal(t, 1, m.WordIndex)
	assert.Equal(t, "damn", text[m.Start:m.End])
}

func TestFind_CaseInsensitive(t *testing.T) {
	v := wordlist.New("en", []string{"damn"})
	text := "DAMN it all"

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 1)
	assert.Equal(t, "DAMN", text[matches[0].Start:matches[0].End])
	assert.Equal(t, "damn", matches[0].Term)
}

func TestFind_MatchesAtEveryPositionInLongText(t *testing.T) {
	// The scan window is bounded by the longest listed phrase; matches at
	// the start, middle, and tail of a long token run must still surface.
	v := wordlist.New("en", []string{"damn", "piece of shit"})
	filler := strings.Repeat("filler ", 50)
	text := "damn " + filler + "piece of shit " + filler + "damn"

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 3)
	assert.Equal(t, "damn", matches[0].Term)
	assert.Equal(t, 0, matches[0].WordIndex)
	assert.Equal(t, "piece of shit", matches[1].Term)
	assert.Equal(t, "damn", matches[2].Term)
	assert.Equal(t, "damn", text[matches[2].Start:matches[2].End])
}

func TestFind_LongestPhraseWins(t *testing.T) {
	v := wordlist.New("en", []string{"bad", "bad word"})
	text := "this is a bad word"

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 1)
	assert.Equal(t, "bad word", matches[0].Term)
	assert.Equal(t, 3, matches[0].WordIndex)
	assert.Equal(t, "bad word", text[matches[0].Start:matches[0].End])
}

func TestFind_PhraseAcrossPunctuation(t *testing.T) {
	// Boundary punctuation is stripped per token, so a phrase still matches
	// when its words carry trailing punctuation.
	v := wordlist.New("en", []string{"bad word"})
	text := `He said "bad word!" twice.`

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 1)
	assert.Equal(t, "bad word", matches[0].Term)
}

func TestFind_NoOverlap(t *testing.T) {
	v := wordlist.New("en", []string{"bad", "bad bad"})
	text := "bad bad bad"

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 2)
	assert.Equal(t, "bad bad", matches[0].Term)
	assert.Equal(t, "bad", matches[1].Term)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].Start, matches[i-1].End)
	}
}

func TestFind_MultipleOccurrencesInOrder(t *testing.T) {
	v := wordlist.New("en", []string{"damn", "crap"})
	text := "damn this crap and damn that"

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"damn", "crap", "damn"}, matchTerms(matches))
	assert.Equal(t, []int{0, 2, 4}, matchIndices(matches))
}

func TestFind_SpanReconstructsTermWords(t *testing.T) {
	v := wordlist.New("en", []string{"son of a bitch", "damn"})
	text := "You son of a bitch, damn you!"

	matches := Find(Tokenize(text), v)
	require.Len(t, matches, 2)

	for _, m := range matches {
		span := strings.ToLower(text[m.Start:m.End])
		assert.Equal(t, strings.Fields(m.Term), strings.Fields(span))
	}
}

func TestFind_Deterministic(t *testing.T) {
	v := wordlist.New("en", []string{"bad", "bad word", "word"})
	text := "a bad word is a bad word"

	first := Find(Tokenize(text), v)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Find(Tokenize(text), v))
	}
}

func matchTerms(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Term
	}
	return out
}

func matchIndices(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.WordIndex
	}
	return out
}
