// Package service wires detection, word lists, and the matching engine into
// the subtitle screening pipeline.
package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/deepsafe/safetext-go/internal/detect"
	"github.com/deepsafe/safetext-go/internal/profanity"
	"github.com/deepsafe/safetext-go/internal/subtitle"
	"github.com/deepsafe/safetext-go/internal/wordlist"
	"github.com/deepsafe/safetext-go/pkg/file"
)

// ScreenerConfig contains screening configuration.
type ScreenerConfig struct {
	// Language forces one language for all files; empty enables per-file
	// auto-detection.
	Language string
	// SampleCues bounds the detection sample size.
	SampleCues int
	// WriteCensored writes a censored SRT copy next to flagged files.
	WriteCensored bool
	// OutputSuffix names censored copies, e.g. ".censored".
	OutputSuffix string
}

// Screener checks subtitle files for listed profanity and produces censored
// copies.
type Screener struct {
	store  *wordlist.Store
	reader subtitle.Reader
	writer subtitle.Writer
	config ScreenerConfig
}

// NewScreener creates a Screener over the given word list store.
func NewScreener(store *wordlist.Store, config ScreenerConfig) *Screener {
	if config.SampleCues <= 0 {
		config.SampleCues = detect.DefaultSampleCues
	}
	if config.OutputSuffix == "" {
		config.OutputSuffix = ".censored"
	}
	return &Screener{
		store:  store,
		reader: subtitle.NewReader(),
		writer: subtitle.NewWriter(),
		config: config,
	}
}

// ScreenFile checks one subtitle file cue by cue. When matches are found and
// censored output is enabled, a censored SRT copy is written next to the
// original.
func (s *Screener) ScreenFile(ctx context.Context, path string) (*ScreenResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subFile, err := s.reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitle: %w", err)
	}

	lang, err := s.resolveLanguage(subFile)
	if err != nil {
		return nil, err
	}

	vocab, err := s.store.Load(lang)
	if err != nil {
		return nil, err
	}
	checker := profanity.NewChecker(vocab)

	result := &ScreenResult{
		SubtitleFile: path,
		Language:     lang,
		LanguageHint: subFile.LanguageHint,
		ScreenedAt:   time.Now().UTC(),
	}

	censoredCues := make([]subtitle.Cue, len(subFile.Cues))
	for i, cue := range subFile.Cues {
		text := subtitle.StripTags(cue.Text)
		matches := checker.Check(text)
		for _, m := range matches {
			result.Matches = append(result.Matches, CueMatch{CueIndex: cue.Index, Match: m})
		}

		censored := cue
		if len(matches) > 0 {
			censored.Text = profanity.CensorText(text, matches)
		}
		censoredCues[i] = censored
	}

	if len(result.Matches) > 0 && s.config.WriteCensored {
		outPath := file.InsertSuffix(file.ReplaceExt(path, ".srt"), s.config.OutputSuffix)
		censoredFile := &subtitle.File{Cues: censoredCues, Format: "srt"}
		if err := s.writer.Write(outPath, censoredFile); err != nil {
			return nil, fmt.Errorf("write censored copy: %w", err)
		}
		result.CensoredFile = outPath
	}

	log.WithFields(log.Fields{
		"file":     path,
		"language": lang,
		"matches":  len(result.Matches),
	}).Debug("screened subtitle file")

	return result, nil
}

// resolveLanguage picks the screening language: the forced config language
// when set, otherwise vocabulary-based detection over the file's leading
// cues.
func (s *Screener) resolveLanguage(subFile *subtitle.File) (string, error) {
	if s.config.Language != "" {
		return s.config.Language, nil
	}

	detector := detect.New(s.store, detect.WithSampleCues(s.config.SampleCues))
	sample := subtitle.ExtractText(subFile, s.config.SampleCues)
	code, err := detector.FromText(sample)
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}

	if hint := subFile.LanguageHint; hint != "" && hint != code {
		log.WithFields(log.Fields{
			"hint":     hint,
			"detected": code,
		}).Warn("subtitle language hint disagrees with vocabulary detection")
	}
	return code, nil
}
