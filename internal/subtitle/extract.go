package subtitle

import (
	"regexp"
	"strings"
)

// Markup tags embedded in cue text, e.g. <i>...</i> or ASS {\an8} overrides.
var tagPattern = regexp.MustCompile(`<[^>]*>|\{[^}]*\}`)

// ExtractText concatenates the first n cues into a single plain-text sample
// with markup tags stripped and newlines flattened to spaces. n <= 0 means
// all cues.
func ExtractText(file *File, n int) string {
	if file == nil || len(file.Cues) == 0 {
		return ""
	}
	if n <= 0 || n > len(file.Cues) {
		n = len(file.Cues)
	}

	parts := make([]string, 0, n)
	for _, cue := range file.Cues[:n] {
		text := StripTags(cue.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// StripTags removes markup tags from cue text and collapses whitespace.
func StripTags(text string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(text, " ")), " ")
}
