// Package library finds subtitle files across configured media directories.
package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Extensions the screening pipeline can parse.
var subtitleExts = map[string]struct{}{
	".srt":  {},
	".vtt":  {},
	".ssa":  {},
	".ass":  {},
	".ttml": {},
	".stl":  {},
}

// Scanner walks media source directories collecting subtitle files.
type Scanner struct {
	sources      []string
	outputSuffix string
}

// NewScanner creates a scanner over the given source directories.
// outputSuffix names the censored-copy suffix so the scanner can skip files
// the pipeline itself produced.
func NewScanner(sources []string, outputSuffix string) *Scanner {
	return &Scanner{sources: sources, outputSuffix: outputSuffix}
}

// Sources returns the configured source directories.
func (s *Scanner) Sources() []string {
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// Scan returns every subtitle file under the sources, sorted for
// deterministic job ordering. Sources are walked concurrently; a missing
// source directory is skipped rather than failing the whole scan.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	return s.scan(ctx, time.Time{})
}

// ScanSince returns only subtitle files modified after the given time.
func (s *Scanner) ScanSince(ctx context.Context, since time.Time) ([]string, error) {
	return s.scan(ctx, since)
}

func (s *Scanner) scan(ctx context.Context, since time.Time) ([]string, error) {
	var mu sync.Mutex
	var found []string

	g, ctx := errgroup.WithContext(ctx)
	for _, source := range s.sources {
		source := source
		g.Go(func() error {
			files, err := s.walkSource(ctx, source, since)
			if err != nil {
				return err
			}
			mu.Lock()
			found = append(found, files...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}

func (s *Scanner) walkSource(ctx context.Context, source string, since time.Time) ([]string, error) {
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !s.wantFile(path) {
			return nil
		}
		if !since.IsZero() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if !info.ModTime().After(since) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func (s *Scanner) wantFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := subtitleExts[ext]; !ok {
		return false
	}
	if s.outputSuffix == "" {
		return true
	}
	base := filepath.Base(path)
	return !strings.HasSuffix(strings.TrimSuffix(base, ext), s.outputSuffix)
}
