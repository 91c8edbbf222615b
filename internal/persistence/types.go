package persistence

import "time"

// Report records the outcome of screening one subtitle file.
type Report struct {
	ID           int64     `json:"id"`
	SubtitleFile string    `json:"subtitle_file"`
	Language     string    `json:"language"`
	LanguageHint string    `json:"language_hint,omitempty"`
	MatchCount   int       `json:"match_count"`
	Terms        []string  `json:"terms"`
	CensoredFile string    `json:"censored_file,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
