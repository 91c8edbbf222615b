// Package persistence stores screening reports and job state in SQLite.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/deepsafe/safetext-go/internal/jobs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename
// (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// SaveReport inserts a screening report and sets its ID.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *Report) error {
	terms, err := json.Marshal(report.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (subtitle_file, language, language_hint, match_count, terms, censored_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.SubtitleFile, report.Language, report.LanguageHint, report.MatchCount, string(terms), report.CensoredFile, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	report.ID, err = res.LastInsertId()
	return err
}

// ListReports returns the most recent reports, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subtitle_file, language, language_hint, match_count, terms, censored_file, created_at
		 FROM reports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		var terms string
		if err := rows.Scan(&r.ID, &r.SubtitleFile, &r.Language, &r.LanguageHint, &r.MatchCount, &terms, &r.CensoredFile, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal([]byte(terms), &r.Terms); err != nil {
			return nil, fmt.Errorf("unmarshal terms: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// LatestReportFor returns the most recent report for a subtitle file, or
// false when the file has never been screened.
func (s *SQLiteStore) LatestReportFor(ctx context.Context, subtitleFile string) (*Report, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subtitle_file, language, language_hint, match_count, terms, censored_file, created_at
		 FROM reports WHERE subtitle_file = ? ORDER BY id DESC LIMIT 1`, subtitleFile)

	var r Report
	var terms string
	err := row.Scan(&r.ID, &r.SubtitleFile, &r.Language, &r.LanguageHint, &r.MatchCount, &terms, &r.CensoredFile, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query report: %w", err)
	}
	if err := json.Unmarshal([]byte(terms), &r.Terms); err != nil {
		return nil, false, fmt.Errorf("unmarshal terms: %w", err)
	}
	return &r, true, nil
}

// SaveJob upserts one job row. Implements jobs.Store.
func (s *SQLiteStore) SaveJob(job *jobs.ScreenJob) error {
	_, err := s.db.Exec(
		`INSERT INTO jobs (id, subtitle_file, status, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status,
		   error = excluded.error, updated_at = excluded.updated_at`,
		job.ID, job.SubtitleFile, string(job.Status), job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

// LoadJobs returns all persisted jobs. Implements jobs.Store.
func (s *SQLiteStore) LoadJobs() ([]*jobs.ScreenJob, error) {
	rows, err := s.db.Query(`SELECT id, subtitle_file, status, error, created_at, updated_at FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	var out []*jobs.ScreenJob
	for rows.Next() {
		var job jobs.ScreenJob
		var status string
		if err := rows.Scan(&job.ID, &job.SubtitleFile, &status, &job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Status = jobs.Status(status)
		out = append(out, &job)
	}
	return out, rows.Err()
}

// DeleteJob removes one job row. Implements jobs.Store.
func (s *SQLiteStore) DeleteJob(id string) error {
	if _, err := s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	return nil
}
