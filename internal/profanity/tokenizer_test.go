package profanity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \t\n  "))
}

func TestTokenize_SpansMapBackToRawText(t *testing.T) {
	text := "Hello, World! This   is a test."
	tokens := Tokenize(text)
	require.Len(t, tokens, 6)

	for i, tok := range tokens {
		assert.Equal(t, i, tok.Index)
		assert.Equal(t, tok.Raw, text[tok.Start:tok.End])
		assert.Less(t, tok.Start, tok.End)
	}

	assert.Equal(t, "hello", tokens[0].Text)
	assert.Equal(t, "Hello", tokens[0].Raw)
	assert.Equal(t, "world", tokens[1].Text)
	assert.Equal(t, "test", tokens[5].Text)
}

func TestTokenize_StripsBoundaryPunctuation(t *testing.T) {
	cases := []struct {
		in   string
		text string
		raw  string
	}{
		{`"word."`, "word", "word"},
		{"(damn)", "damn", "damn"},
		{"hell!!!", "hell", "hell"},
		{"...dots...", "dots", "dots"},
		{"don't", "don't", "don't"},
		{"well-known", "well-known", "well-known"},
		{"snake_case", "snake_case", "snake_case"},
	}
	for _, tc := range cases {
		tokens := Tokenize(tc.in)
		require.Len(t, tokens, 1, "input %q", tc.in)
		assert.Equal(t, tc.text, tokens[0].Text, "input %q", tc.in)
		assert.Equal(t, tc.raw, tc.in[tokens[0].Start:tokens[0].End], "input %q", tc.in)
	}
}

func TestTokenize_DropsPunctuationOnlyTokens(t *testing.T) {
	tokens := Tokenize("wait -- what ?!")
	require.Len(t, tokens, 2)
	assert.Equal(t, "wait", tokens[0].Text)
	assert.Equal(t, "what", tokens[1].Text)
	assert.Equal(t, 0, tokens[0].Index)
	assert.Equal(t, 1, tokens[1].Index)
}

func TestTokenize_UnicodeOffsets(t *testing.T) {
	text := "çok güzel, değil mi?"
	tokens := Tokenize(text)
	require.Len(t, tokens, 4)

	for _, tok := range tokens {
		assert.Equal(t, tok.Raw, text[tok.Start:tok.End])
	}
	assert.Equal(t, "güzel", tokens[1].Text)
	assert.Equal(t, "mi", tokens[3].Text)
}

func TestTokenize_IndicesFollowOffsets(t *testing.T) {
	tokens := Tokenize("one two three four")
	for i := 1; i < len(tokens); i++ {
		assert.Greater(t, tokens[i].Start, tokens[i-1].End)
	}
}
