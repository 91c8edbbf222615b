package service

import (
	"time"

	"github.com/deepsafe/safetext-go/internal/profanity"
)

// CueMatch locates one profanity occurrence within a specific cue. The
// match offsets are relative to the cue's plain text.
type CueMatch struct {
	CueIndex int             `json:"cue_index"`
	Match    profanity.Match `json:"match"`
}

// ScreenResult is the outcome of screening one subtitle file.
type ScreenResult struct {
	SubtitleFile string     `json:"subtitle_file"`
	Language     string     `json:"language"`
	LanguageHint string     `json:"language_hint,omitempty"`
	Matches      []CueMatch `json:"matches"`
	CensoredFile string     `json:"censored_file,omitempty"`
	ScreenedAt   time.Time  `json:"screened_at"`
}

// Terms returns the distinct matched terms in order of first occurrence.
func (r *ScreenResult) Terms() []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, cm := range r.Matches {
		if _, ok := seen[cm.Match.Term]; ok {
			continue
		}
		seen[cm.Match.Term] = struct{}{}
		terms = append(terms, cm.Match.Term)
	}
	return terms
}
