package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsafe/safetext-go/internal/jobs"
	"github.com/deepsafe/safetext-go/internal/library"
	"github.com/deepsafe/safetext-go/internal/persistence"
)

type memorySink struct {
	mu      sync.Mutex
	reports []*persistence.Report
}

func (m *memorySink) SaveReport(_ context.Context, report *persistence.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

func (m *memorySink) LatestReportFor(_ context.Context, subtitleFile string) (*persistence.Report, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].SubtitleFile == subtitleFile {
			return m.reports[i], true, nil
		}
	}
	return nil, false, nil
}

func (m *memorySink) list() []*persistence.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*persistence.Report(nil), m.reports...)
}

func TestScanOnce_EnqueuesDiscoveredFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.srt"), []byte(cleanSRT), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.srt"), []byte(profaneSRT), 0o644))

	queue := jobs.NewQueue(1, nil)
	svc := NewRunnableScreenService(
		"@hourly",
		library.NewScanner([]string{dir}, ".censored"),
		queue,
		newTestScreener(t, ScreenerConfig{}),
		nil,
	)

	svc.ScanOnce(context.Background())
	assert.Len(t, queue.List(), 2)

	// A rescan with no new files enqueues nothing.
	svc.ScanOnce(context.Background())
	assert.Len(t, queue.List(), 2)
}

func TestExecute_ScreensAndPersistsReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.srt")
	require.NoError(t, os.WriteFile(path, []byte(profaneSRT), 0o644))

	sink := &memorySink{}
	svc := NewRunnableScreenService(
		"@hourly",
		library.NewScanner([]string{dir}, ".censored"),
		jobs.NewQueue(1, nil),
		newTestScreener(t, ScreenerConfig{WriteCensored: true}),
		sink,
	)

	job := &jobs.ScreenJob{ID: "job-1", SubtitleFile: path}
	require.NoError(t, svc.execute(context.Background(), job))

	reports := sink.list()
	require.Len(t, reports, 1)
	assert.Equal(t, path, reports[0].SubtitleFile)
	assert.Equal(t, "en", reports[0].Language)
	assert.Equal(t, "en", reports[0].LanguageHint)
	assert.Equal(t, 2, reports[0].MatchCount)
	assert.Equal(t, []string{"damn", "piece of shit"}, reports[0].Terms)
	assert.FileExists(t, reports[0].CensoredFile)
}

func TestExecute_SkipsFileUnchangedSinceLastReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.srt")
	require.NoError(t, os.WriteFile(path, []byte(profaneSRT), 0o644))

	sink := &memorySink{}
	svc := NewRunnableScreenService(
		"@hourly",
		library.NewScanner([]string{dir}, ".censored"),
		jobs.NewQueue(1, nil),
		newTestScreener(t, ScreenerConfig{}),
		sink,
	)

	job := &jobs.ScreenJob{ID: "job-1", SubtitleFile: path}
	require.NoError(t, svc.execute(context.Background(), job))
	require.Len(t, sink.list(), 1)

	// The report postdates the file, so a rerun screens nothing new.
	require.NoError(t, svc.execute(context.Background(), job))
	assert.Len(t, sink.list(), 1)

	// Touching the file past the report triggers a rescreen.
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))
	require.NoError(t, svc.execute(context.Background(), job))
	assert.Len(t, sink.list(), 2)
}

func TestExecute_ReportsScreeningError(t *testing.T) {
	svc := NewRunnableScreenService(
		"@hourly",
		library.NewScanner(nil, ".censored"),
		jobs.NewQueue(1, nil),
		newTestScreener(t, ScreenerConfig{}),
		&memorySink{},
	)

	job := &jobs.ScreenJob{ID: "job-1", SubtitleFile: filepath.Join(t.TempDir(), "missing.srt")}
	assert.Error(t, svc.execute(context.Background(), job))
}

func TestSchedule_RunsQueuedJobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie.srt"), []byte(profaneSRT), 0o644))

	sink := &memorySink{}
	svc := NewRunnableScreenService(
		"@hourly",
		library.NewScanner([]string{dir}, ".censored"),
		jobs.NewQueue(2, nil),
		newTestScreener(t, ScreenerConfig{}),
		sink,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Schedule(ctx) }()

	require.Eventually(t, func() bool {
		return len(sink.list()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("schedule did not stop after cancellation")
	}
}
