package file

import (
	"path/filepath"
	"strings"
)

// InsertSuffix inserts suffix before the path's extension, so
// ("show.srt", ".censored") yields "show.censored.srt". Extension-less
// paths get the suffix appended.
func InsertSuffix(path, suffix string) string {
	if path == "" || suffix == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filepath.Join(dir, filename+suffix)
	}

	return filepath.Join(dir, filename[:lastDot]+suffix+filename[lastDot:])
}

// ReplaceExt swaps the path's extension for ext, adding a leading dot to
// ext when missing.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}
	return filepath.Join(dir, filename[:lastDot]+ext)
}
