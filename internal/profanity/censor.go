package profanity

import "strings"

// Mask replaces every matched span regardless of its length.
const Mask = "***"

// CensorText copies unmatched spans of text verbatim and replaces each
// matched span with the fixed mask. Matches must be ordered by position and
// non-overlapping, which Find guarantees.
func CensorText(text string, matches []Match) string {
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, m := range matches {
		if m.Start < last || m.End > len(text) || m.Start >= m.End {
			continue
		}
		b.WriteString(text[last:m.Start])
		b.WriteString(Mask)
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String()
}
