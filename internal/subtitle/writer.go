package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// DefaultWriter writes subtitle files in SRT format
type DefaultWriter struct{}

// NewWriter creates a new subtitle file writer
func NewWriter() Writer {
	return &DefaultWriter{}
}

// Write writes the cues to path in SRT format regardless of the source
// format; censored copies are always emitted as SRT.
func (w *DefaultWriter) Write(path string, file *File) error {
	if file == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	defer writer.Flush()

	for i, cue := range file.Cues {
		index := cue.Index
		if index == 0 {
			index = i + 1
		}
		fmt.Fprintf(writer, "%d\n", index)
		fmt.Fprintf(writer, "%s --> %s\n", formatDuration(cue.StartTime), formatDuration(cue.EndTime))
		fmt.Fprintf(writer, "%s\n\n", cue.Text)
	}

	return nil
}

// formatDuration formats time.Duration to SRT time format
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
