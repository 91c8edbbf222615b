// Package safetext is the public entry point for profanity checking and
// censoring. A SafeText session owns one selected language and its loaded
// vocabulary; the language can be set directly or auto-detected from a text
// sample or a subtitle file.
package safetext

import (
	"errors"
	"sync"

	"github.com/deepsafe/safetext-go/internal/detect"
	"github.com/deepsafe/safetext-go/internal/profanity"
	"github.com/deepsafe/safetext-go/internal/wordlist"
)

// ErrLanguageNotSet is returned by check and censor operations before a
// language has been selected.
var ErrLanguageNotSet = errors.New("safetext: language not set")

// Re-exported sentinels so callers only need this package at the boundary.
var (
	ErrUnsupportedLanguage = wordlist.ErrUnsupportedLanguage
	ErrDetectionFailed     = detect.ErrDetectionFailed
)

// Match is a located occurrence of a listed term.
type Match = profanity.Match

// SafeText is a profanity checking session. Safe for concurrent check and
// censor calls; language changes take effect atomically.
type SafeText struct {
	store    *wordlist.Store
	detector *detect.Detector

	mu      sync.RWMutex
	checker *profanity.Checker
}

// Option configures a SafeText session.
type Option func(*options)

type options struct {
	wordlistDir string
	sampleCues  int
}

// WithWordlistDir points the session at an on-disk word list directory that
// overrides the embedded lists.
func WithWordlistDir(dir string) Option {
	return func(o *options) {
		o.wordlistDir = dir
	}
}

// WithSampleCues sets how many subtitle cues feed language detection.
func WithSampleCues(n int) Option {
	return func(o *options) {
		o.sampleCues = n
	}
}

// New creates a session for the given language code. An empty code leaves
// the language unset until SetLanguage or one of the detection setters is
// called.
func New(code string, opts ...Option) (*SafeText, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var storeOpts []wordlist.Option
	if o.wordlistDir != "" {
		storeOpts = append(storeOpts, wordlist.WithDir(o.wordlistDir))
	}
	store, err := wordlist.NewStore(storeOpts...)
	if err != nil {
		return nil, err
	}

	var detectOpts []detect.Option
	if o.sampleCues > 0 {
		detectOpts = append(detectOpts, detect.WithSampleCues(o.sampleCues))
	}

	s := &SafeText{
		store:    store,
		detector: detect.New(store, detectOpts...),
	}
	if code != "" {
		if err := s.SetLanguage(code); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetLanguage selects the language whose word list is used for checking.
// Returns ErrUnsupportedLanguage for unknown codes.
func (s *SafeText) SetLanguage(code string) error {
	vocab, err := s.store.Load(code)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.checker = profanity.NewChecker(vocab)
	s.mu.Unlock()
	return nil
}

// Language returns the currently selected language code, or "" if unset.
func (s *SafeText) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.checker == nil {
		return ""
	}
	return s.checker.Language()
}

// SetLanguageFromText detects the language of the sample and selects it.
func (s *SafeText) SetLanguageFromText(text string) (string, error) {
	code, err := s.detector.FromText(text)
	if err != nil {
		return "", err
	}
	return code, s.SetLanguage(code)
}

// SetLanguageFromSubtitleFile detects the language of the subtitle file at
// path and selects it.
func (s *SafeText) SetLanguageFromSubtitleFile(path string) (string, error) {
	code, err := s.detector.FromSubtitleFile(path)
	if err != nil {
		return "", err
	}
	return code, s.SetLanguage(code)
}

// CheckProfanity returns every listed-term occurrence in text in order,
// with word indices and byte-offset spans.
func (s *SafeText) CheckProfanity(text string) ([]Match, error) {
	checker, err := s.current()
	if err != nil {
		return nil, err
	}
	return checker.Check(text), nil
}

// CensorProfanity returns a copy of text with every matched span replaced
// by the fixed mask.
func (s *SafeText) CensorProfanity(text string) (string, error) {
	checker, err := s.current()
	if err != nil {
		return "", err
	}
	return checker.Censor(text), nil
}

func (s *SafeText) current() (*profanity.Checker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.checker == nil {
		return nil, ErrLanguageNotSet
	}
	return s.checker, nil
}
