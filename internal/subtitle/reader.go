package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/asticode/go-astisub"
)

// DefaultReader parses SRT files directly and delegates other supported
// formats to go-astisub.
type DefaultReader struct{}

// NewReader creates a new subtitle file reader
func NewReader() Reader {
	return &DefaultReader{}
}

// Read parses the subtitle file at path into cues. The file's extension
// selects the parser; unknown extensions are an error.
func (r *DefaultReader) Read(path string) (*File, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		file *File
		err  error
	)
	switch ext {
	case ".srt":
		file, err = readSRT(path)
	case ".vtt", ".ssa", ".ass", ".ttml", ".stl":
		file, err = readAstisub(path, ext)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	file.LanguageHint = languageHint(file.Cues)
	return file, nil
}

// readSRT parses an SRT file with a small state machine: an index line, a
// time line, then text lines up to the next blank line.
func readSRT(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle file: %w", err)
	}
	defer f.Close()

	var cues []Cue
	scanner := bufio.NewScanner(f)

	current := Cue{}
	state := "index" // possible values: "index", "time", "text"
	var textLines []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch state {
		case "index":
			if line == "" {
				continue
			}
			index, err := strconv.Atoi(strings.TrimPrefix(line, "\ufeff"))
			if err != nil {
				continue // skip non-index lines
			}
			current.Index = index
			state = "time"

		case "time":
			if line == "" {
				continue
			}
			startTime, endTime, err := parseSRTTime(line)
			if err != nil {
				return nil, fmt.Errorf("parse cue %d time: %w", current.Index, err)
			}
			current.StartTime = startTime
			current.EndTime = endTime
			state = "text"
			textLines = nil

		case "text":
			if line == "" {
				if len(textLines) > 0 {
					current.Text = strings.Join(textLines, "\n")
					cues = append(cues, current)
					current = Cue{}
				}
				state = "index"
				textLines = nil
			} else {
				textLines = append(textLines, line)
			}
		}
	}

	// last cue may end without a trailing blank line
	if state == "text" && len(textLines) > 0 {
		current.Text = strings.Join(textLines, "\n")
		cues = append(cues, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitle file: %w", err)
	}

	return &File{Cues: cues, Format: "srt"}, nil
}

// readAstisub parses non-SRT formats through go-astisub.
func readAstisub(path, ext string) (*File, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse subtitle file: %w", err)
	}

	cues := make([]Cue, 0, len(subs.Items))
	for i, item := range subs.Items {
		cues = append(cues, Cue{
			Index:     i + 1,
			StartTime: item.StartAt,
			EndTime:   item.EndAt,
			Text:      item.String(),
		})
	}

	return &File{Cues: cues, Format: strings.TrimPrefix(ext, ".")}, nil
}

var srtTimePattern = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})`)

// parseSRTTime parses an SRT time line, e.g. "00:02:16,612 --> 00:02:19,376".
func parseSRTTime(line string) (time.Duration, time.Duration, error) {
	matches := srtTimePattern.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf("invalid time format: %s", line)
	}

	parse := func(hours, minutes, seconds, millis string) time.Duration {
		h, _ := strconv.Atoi(hours)
		m, _ := strconv.Atoi(minutes)
		s, _ := strconv.Atoi(seconds)
		ms, _ := strconv.Atoi(millis)

		return time.Duration(h)*time.Hour +
			time.Duration(m)*time.Minute +
			time.Duration(s)*time.Second +
			time.Duration(ms)*time.Millisecond
	}

	return parse(matches[1], matches[2], matches[3], matches[4]),
		parse(matches[5], matches[6], matches[7], matches[8]),
		nil
}

// languageHint guesses the file's language by majority vote over per-cue
// whatlanggo detections. Best effort only; screening uses vocabulary-based
// detection for the actual language decision.
func languageHint(cues []Cue) string {
	if len(cues) == 0 {
		return ""
	}

	votes := make(map[string]int)
	for _, cue := range cues {
		code := whatlanggo.DetectLang(cue.Text).Iso6391()
		if code == "" {
			continue
		}
		votes[code]++
	}

	var top string
	var topCount int
	for code, count := range votes {
		if count > topCount || (count == topCount && code < top) {
			top = code
			topCount = count
		}
	}
	return top
}
