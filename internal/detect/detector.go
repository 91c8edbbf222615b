// Package detect selects a supported language for a text sample by scoring
// word overlap against each language's reference vocabulary.
package detect

import (
	"errors"
	"fmt"

	"github.com/deepsafe/safetext-go/internal/profanity"
	"github.com/deepsafe/safetext-go/internal/subtitle"
	"github.com/deepsafe/safetext-go/internal/wordlist"
)

// ErrDetectionFailed is returned when a sample is empty or no language
// scores above zero.
var ErrDetectionFailed = errors.New("detect: no language scored above zero")

// DefaultSampleCues is how many subtitle cues feed the detection sample.
const DefaultSampleCues = 10

// Detector scores samples against every supported language's vocabulary.
type Detector struct {
	store      *wordlist.Store
	reader     subtitle.Reader
	sampleCues int
}

// Option configures a Detector.
type Option func(*Detector)

// WithSampleCues sets how many subtitle cues are sampled for detection.
func WithSampleCues(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleCues = n
		}
	}
}

// WithReader replaces the subtitle file reader.
func WithReader(r subtitle.Reader) Option {
	return func(d *Detector) {
		d.reader = r
	}
}

// New creates a Detector over the store's supported languages.
func New(store *wordlist.Store, opts ...Option) *Detector {
	d := &Detector{
		store:      store,
		reader:     subtitle.NewReader(),
		sampleCues: DefaultSampleCues,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromText returns the code of the language whose reference vocabulary
// covers the most tokens of text. Ties break toward the earlier manifest
// position, so results never depend on input order.
func (d *Detector) FromText(text string) (string, error) {
	tokens := profanity.Tokenize(text)
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: empty sample", ErrDetectionFailed)
	}

	best := ""
	bestScore := 0
	for _, lang := range d.store.Languages() {
		vocab, err := d.store.Load(lang.Code)
		if err != nil {
			return "", fmt.Errorf("score language %s: %w", lang.Code, err)
		}

		score := 0
		for _, tok := range tokens {
			if vocab.InReferenceSet(tok.Text) {
				score++
			}
		}
		if score > bestScore {
			best = lang.Code
			bestScore = score
		}
	}

	if bestScore == 0 {
		return "", ErrDetectionFailed
	}
	return best, nil
}

// FromSubtitleFile extracts a plain-text sample from the file's leading cues
// and detects its language. File and parse errors surface from the subtitle
// reader unchanged.
func (d *Detector) FromSubtitleFile(path string) (string, error) {
	file, err := d.reader.Read(path)
	if err != nil {
		return "", err
	}
	return d.FromText(subtitle.ExtractText(file, d.sampleCues))
}
