package wordlist

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

//go:embed languages.toml data
var embedded embed.FS

const (
	wordsFile     = "words.txt"
	stopwordsFile = "stopwords.txt"
)

// Store loads and caches per-language vocabularies. Word lists ship embedded
// in the binary; an on-disk directory with the same data/<code>/words.txt
// layout overrides the embedded copy per language.
type Store struct {
	dir       string
	languages []Language

	mu    sync.Mutex
	cache map[string]*Vocabulary
}

// Option configures a Store.
type Option func(*Store)

// WithDir sets an on-disk word list directory that overrides embedded lists.
func WithDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

// NewStore creates a Store with the supported languages read from the
// embedded manifest.
func NewStore(opts ...Option) (*Store, error) {
	raw, err := embedded.ReadFile("languages.toml")
	if err != nil {
		return nil, fmt.Errorf("read language manifest: %w", err)
	}

	var m manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse language manifest: %w", err)
	}
	if len(m.Languages) == 0 {
		return nil, fmt.Errorf("language manifest declares no languages")
	}

	s := &Store{
		languages: m.Languages,
		cache:     make(map[string]*Vocabulary),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Languages returns the supported languages in manifest order, which is also
// the detection tie-break priority.
func (s *Store) Languages() []Language {
	out := make([]Language, len(s.languages))
	copy(out, s.languages)
	return out
}

// Supported reports whether code resolves to a supported language.
func (s *Store) Supported(code string) bool {
	_, err := s.resolve(code)
	return err == nil
}

// Load returns the vocabulary for the given language code, reading the word
// lists on first use and caching the result for the store's lifetime.
// Returns ErrUnsupportedLanguage when no list exists for the code.
func (s *Store) Load(code string) (*Vocabulary, error) {
	resolved, err := s.resolve(code)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[resolved]; ok {
		return v, nil
	}

	v, err := s.read(resolved)
	if err != nil {
		return nil, err
	}
	s.cache[resolved] = v
	return v, nil
}

// resolve normalizes code to its 2-letter base (e.g. "en-US" → "en") and
// checks it against the manifest.
func (s *Store) resolve(code string) (string, error) {
	normalized := normalizeLanguageCode(code)
	for _, lang := range s.languages {
		if lang.Code == normalized {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
}

func (s *Store) read(code string) (*Vocabulary, error) {
	terms, err := s.readList(code, wordsFile)
	if err != nil {
		return nil, fmt.Errorf("load %s word list: %w", code, err)
	}
	v := New(code, terms)

	stopwords, err := s.readList(code, stopwordsFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s stop words: %w", code, err)
	}
	for _, word := range stopwords {
		v.refWords[word] = struct{}{}
	}

	return v, nil
}

// readList reads one newline-delimited list, preferring the on-disk override
// when present. Lines are trimmed and lowercased; empty lines and '#'
// comments are skipped.
func (s *Store) readList(code, name string) ([]string, error) {
	raw, err := s.readListFile(code, name)
	if err != nil {
		return nil, err
	}

	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, strings.ToLower(line))
	}
	return entries, scanner.Err()
}

func (s *Store) readListFile(code, name string) ([]byte, error) {
	if s.dir != "" {
		override := filepath.Join(s.dir, code, name)
		if raw, err := os.ReadFile(override); err == nil {
			return raw, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return embedded.ReadFile("data/" + code + "/" + name)
}

// normalizeLanguageCode parses a language string and returns its 2-letter
// base code. Unparseable codes pass through lowercased.
func normalizeLanguageCode(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(code))
	}
	base, _ := tag.Base()
	return base.String()
}
