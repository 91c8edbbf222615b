package subtitle

import "time"

// Reader is the interface for parsing subtitle files into cues
type Reader interface {
	Read(path string) (*File, error)
}

// Writer is the interface for writing subtitle files
type Writer interface {
	Write(path string, file *File) error
}

// Cue represents a single timed subtitle text block
type Cue struct {
	Index     int           // cue index, 1-based
	StartTime time.Duration // start time
	EndTime   time.Duration // end time
	Text      string        // cue text, may span multiple lines
}

// File represents a parsed subtitle file
type File struct {
	Cues         []Cue
	LanguageHint string // ISO 639-1 guess from cue text, empty if unknown
	Format       string // e.g. srt, vtt, ass
}
