package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ScreenJob tracks one subtitle file through the screening pipeline. The
// subtitle path doubles as the dedupe key so repeated scans never queue the
// same file twice while a run is in flight.
type ScreenJob struct {
	ID           string    `json:"id"`
	SubtitleFile string    `json:"subtitle_file"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists job state across restarts. Implementations must be safe
// for concurrent use.
type Store interface {
	SaveJob(job *ScreenJob) error
	LoadJobs() ([]*ScreenJob, error)
	DeleteJob(id string) error
}
