package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/deepsafe/safetext-go/internal/jobs"
	"github.com/deepsafe/safetext-go/internal/library"
	"github.com/deepsafe/safetext-go/internal/persistence"
)

// ReportStore persists finished screening reports and answers whether a
// file was already screened.
type ReportStore interface {
	SaveReport(ctx context.Context, report *persistence.Report) error
	LatestReportFor(ctx context.Context, subtitleFile string) (*persistence.Report, bool, error)
}

// RunnableScreenService scans the media library on a cron schedule and runs
// every discovered subtitle file through the screening queue.
type RunnableScreenService struct {
	cronExpr string
	cron     *cron.Cron
	scanner  *library.Scanner
	queue    *jobs.Queue
	screener *Screener
	reports  ReportStore

	mu       sync.Mutex
	lastScan time.Time
}

// NewRunnableScreenService assembles the scheduled screening pipeline.
// reports may be nil to disable report persistence.
func NewRunnableScreenService(
	cronExpr string,
	scanner *library.Scanner,
	queue *jobs.Queue,
	screener *Screener,
	reports ReportStore,
) *RunnableScreenService {
	return &RunnableScreenService{
		cronExpr: cronExpr,
		cron:     cron.New(),
		scanner:  scanner,
		queue:    queue,
		screener: screener,
		reports:  reports,
	}
}

// Schedule starts the worker pool, runs one immediate scan, and schedules
// recurring scans. Blocks until ctx is cancelled.
func (s *RunnableScreenService) Schedule(ctx context.Context) error {
	s.queue.Start(s.execute)

	if _, err := s.cron.AddFunc(s.cronExpr, func() { s.ScanOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.cronExpr, err)
	}
	s.cron.Start()

	s.ScanOnce(ctx)

	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// Stop halts the schedule and drains in-flight jobs.
func (s *RunnableScreenService) Stop() {
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.queue.Stop()
}

// LastScan reports when the library was last scanned. Zero before the
// first scan completes.
func (s *RunnableScreenService) LastScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// ScanOnce scans the library and enqueues screening jobs. The first scan
// covers everything; subsequent scans only pick up files modified since.
func (s *RunnableScreenService) ScanOnce(ctx context.Context) {
	s.mu.Lock()
	since := s.lastScan
	scanStart := time.Now()
	s.mu.Unlock()

	var (
		files []string
		err   error
	)
	if since.IsZero() {
		files, err = s.scanner.Scan(ctx)
	} else {
		files, err = s.scanner.ScanSince(ctx, since)
	}
	if err != nil {
		log.Errorf("library scan failed: %v", err)
		return
	}

	queued := 0
	for _, f := range files {
		if _, created := s.queue.Enqueue(f); created {
			queued++
		}
	}

	s.mu.Lock()
	s.lastScan = scanStart
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"found":  len(files),
		"queued": queued,
	}).Info("library scan complete")
}

// execute is the queue executor: screen one file and persist its report.
// A file whose latest report postdates its modification time is skipped.
func (s *RunnableScreenService) execute(ctx context.Context, job *jobs.ScreenJob) error {
	if s.alreadyScreened(ctx, job.SubtitleFile) {
		log.WithField("file", job.SubtitleFile).Debug("subtitle file unchanged since last report, skipping")
		return nil
	}

	result, err := s.screener.ScreenFile(ctx, job.SubtitleFile)
	if err != nil {
		return err
	}

	if s.reports != nil {
		report := &persistence.Report{
			SubtitleFile: result.SubtitleFile,
			Language:     result.Language,
			LanguageHint: result.LanguageHint,
			MatchCount:   len(result.Matches),
			Terms:        result.Terms(),
			CensoredFile: result.CensoredFile,
			CreatedAt:    result.ScreenedAt,
		}
		if err := s.reports.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	if len(result.Matches) > 0 {
		log.WithFields(log.Fields{
			"file":     result.SubtitleFile,
			"language": result.Language,
			"matches":  len(result.Matches),
			"censored": result.CensoredFile,
		}).Warn("profanity found in subtitle file")
	}
	return nil
}

// alreadyScreened reports whether the file's latest report is newer than
// the file itself. Lookup problems fall through to a rescreen.
func (s *RunnableScreenService) alreadyScreened(ctx context.Context, subtitleFile string) bool {
	if s.reports == nil {
		return false
	}
	prev, found, err := s.reports.LatestReportFor(ctx, subtitleFile)
	if err != nil || !found {
		return false
	}
	info, err := os.Stat(subtitleFile)
	if err != nil {
		return false
	}
	return !info.ModTime().After(prev.CreatedAt)
}
