package wordlist

import (
	"errors"
	"strings"
)

// ErrUnsupportedLanguage is returned when no word list exists for the
// requested language code.
var ErrUnsupportedLanguage = errors.New("wordlist: unsupported language")

// Term is a single profanity entry from a language list. Multi-word phrases
// are split into their constituent words at load time.
type Term struct {
	Raw   string   // listed spelling, lowercased
	Words []string // constituent lowercase words, never empty
}

// Language describes one supported language from the manifest. Manifest order
// doubles as the detection tie-break priority.
type Language struct {
	Code string `toml:"code" json:"code"`
	Name string `toml:"name" json:"name"`
}

type manifest struct {
	Languages []Language `toml:"language"`
}

// Vocabulary holds the loaded terms and detection reference words for one
// language. Immutable after load; safe for concurrent readers.
type Vocabulary struct {
	Code  string
	Terms []Term

	root     *trieNode
	refWords map[string]struct{}
	maxWords int
}

type trieNode struct {
	children map[string]*trieNode
	term     *Term
}

// New builds a Vocabulary from raw term strings. Terms are lowercased and
// split into words; empty entries are skipped. Used by the Store and by
// callers that assemble vocabularies in memory.
func New(code string, terms []string) *Vocabulary {
	v := &Vocabulary{
		Code:     code,
		root:     &trieNode{children: make(map[string]*trieNode)},
		refWords: make(map[string]struct{}),
	}
	for _, raw := range terms {
		raw = strings.ToLower(strings.TrimSpace(raw))
		words := strings.Fields(raw)
		if len(words) == 0 {
			continue
		}
		v.insert(Term{Raw: strings.Join(words, " "), Words: words})
	}
	return v
}

// Empty reports whether the vocabulary contains no terms.
func (v *Vocabulary) Empty() bool {
	return v == nil || len(v.Terms) == 0
}

// MaxPhraseWords returns the word count of the longest listed phrase.
func (v *Vocabulary) MaxPhraseWords() int {
	if v == nil {
		return 0
	}
	return v.maxWords
}

// LongestMatch walks the term trie over words, which must start at the
// candidate match position, and returns the longest listed term that matches
// word by word, together with the number of words it consumes.
func (v *Vocabulary) LongestMatch(words []string) (Term, int, bool) {
	if v == nil || v.root == nil {
		return Term{}, 0, false
	}

	node := v.root
	var best *Term
	consumed := 0

	for i, word := range words {
		next, ok := node.children[word]
		if !ok {
			break
		}
		node = next
		if node.term != nil {
			best = node.term
			consumed = i + 1
		}
	}

	if best == nil {
		return Term{}, 0, false
	}
	return *best, consumed, true
}

// InReferenceSet reports whether word belongs to the language's detection
// reference set (everyday stop words plus the profanity list's own words).
func (v *Vocabulary) InReferenceSet(word string) bool {
	if v == nil {
		return false
	}
	_, ok := v.refWords[word]
	return ok
}

func (v *Vocabulary) insert(term Term) {
	node := v.root
	for _, word := range term.Words {
		next, ok := node.children[word]
		if !ok {
			next = &trieNode{children: make(map[string]*trieNode)}
			node.children[word] = next
		}
		node = next
	}
	if node.term == nil {
		t := term
		node.term = &t
		v.Terms = append(v.Terms, t)
	}
	if len(term.Words) > v.maxWords {
		v.maxWords = len(term.Words)
	}
	for _, word := range term.Words {
		v.refWords[word] = struct{}{}
	}
}
