package api

import (
	"time"

	"github.com/deepsafe/safetext-go/internal/jobs"
	"github.com/deepsafe/safetext-go/internal/persistence"
	"github.com/deepsafe/safetext-go/internal/profanity"
	"github.com/deepsafe/safetext-go/internal/wordlist"
)

// CheckRequest asks whether a text contains listed profanity. Language is
// optional; when empty the language is detected from the text itself.
type CheckRequest struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

type CheckResponse struct {
	Language          string            `json:"language"`
	ContainsProfanity bool              `json:"contains_profanity"`
	Matches           []profanity.Match `json:"matches"`
}

// CensorRequest carries the same fields as CheckRequest; the response adds
// the text with every match replaced by the fixed mask.
type CensorRequest struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

type CensorResponse struct {
	Language string            `json:"language"`
	Censored string            `json:"censored"`
	Matches  []profanity.Match `json:"matches"`
}

type DetectRequest struct {
	Text string `json:"text"`
}

type DetectResponse struct {
	Language string `json:"language"`
}

type ReportsResponse struct {
	Reports []persistence.Report `json:"reports"`
}

type JobsResponse struct {
	Jobs []*jobs.ScreenJob `json:"jobs"`
}

// StatusResponse reports service health, the supported languages, and the
// library scan schedule when one is configured.
type StatusResponse struct {
	Service   string              `json:"service"`
	Languages []wordlist.Language `json:"languages"`
	Schedule  *ScheduleStatus     `json:"schedule,omitempty"`
}

type ScheduleStatus struct {
	Expression    string    `json:"expression"`
	LastScan      time.Time `json:"last_scan,omitempty"`
	NextScan      time.Time `json:"next_scan"`
	UntilNextScan string    `json:"until_next_scan"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// LogEntry is the access-log record shipped to Kafka by the logging
// middleware.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}
