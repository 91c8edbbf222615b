// Package profanity implements the matching and position-reporting engine:
// tokenization with byte-accurate spans, greedy longest-phrase matching
// against a loaded vocabulary, and mask-based censoring.
package profanity

import "github.com/deepsafe/safetext-go/internal/wordlist"

// Checker binds the engine to one loaded vocabulary. Safe for concurrent
// use; all per-call state is local.
type Checker struct {
	vocab *wordlist.Vocabulary
}

// NewChecker creates a Checker over the given vocabulary.
func NewChecker(vocab *wordlist.Vocabulary) *Checker {
	return &Checker{vocab: vocab}
}

// Language returns the vocabulary's language code.
func (c *Checker) Language() string {
	if c.vocab == nil {
		return ""
	}
	return c.vocab.Code
}

// Check tokenizes text and returns every listed-term occurrence in order.
func (c *Checker) Check(text string) []Match {
	return Find(Tokenize(text), c.vocab)
}

// Censor returns a copy of text with every matched span replaced by the
// fixed mask.
func (c *Checker) Censor(text string) string {
	return CensorText(text, c.Check(text))
}
