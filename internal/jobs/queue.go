// Package jobs runs subtitle screening work through a deduplicating queue
// with a fixed worker pool.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Executor performs the actual screening for one job.
type Executor func(ctx context.Context, job *ScreenJob) error

const defaultMaxJobs = 1000

type Queue struct {
	workerCount int
	maxJobs     int
	store       Store

	mu         sync.RWMutex
	jobs       map[string]*ScreenJob
	dedupe     map[string]string // subtitle path → job id
	idCounter  uint64
	started    bool
	pendingIDs chan string
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewQueue creates a queue with workerCount workers. A nil store disables
// persistence; otherwise previously saved jobs are rehydrated and pending
// ones rerun once Start is called.
func NewQueue(workerCount int, store Store) *Queue {
	if workerCount <= 0 {
		workerCount = 1
	}
	q := &Queue{
		workerCount: workerCount,
		maxJobs:     defaultMaxJobs,
		store:       store,
		jobs:        make(map[string]*ScreenJob),
		dedupe:      make(map[string]string),
		pendingIDs:  make(chan string, 1024),
		stopCh:      make(chan struct{}),
	}
	q.hydrate()
	return q
}

// Enqueue registers a screening job for the subtitle file. Returns the
// existing job and false when the file is already queued or running.
func (q *Queue) Enqueue(subtitleFile string) (*ScreenJob, bool) {
	now := time.Now()

	q.mu.Lock()
	if id, ok := q.dedupe[subtitleFile]; ok {
		if existing, exists := q.jobs[id]; exists {
			snapshot := cloneJob(existing)
			q.mu.Unlock()
			return snapshot, false
		}
		delete(q.dedupe, subtitleFile)
	}

	id := fmt.Sprintf("job-%d", atomic.AddUint64(&q.idCounter, 1))
	job := &ScreenJob{
		ID:           id,
		SubtitleFile: subtitleFile,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	q.jobs[id] = job
	q.dedupe[subtitleFile] = id
	started := q.started
	snapshot := cloneJob(job)
	q.mu.Unlock()

	q.persist(snapshot)
	if started {
		q.dispatch(id)
	}
	return snapshot, true
}

// Get returns a snapshot of the job with the given id.
func (q *Queue) Get(id string) (*ScreenJob, bool) {
	q.mu.RLock()
	job, ok := q.jobs[id]
	q.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneJob(job), true
}

// List returns snapshots of all known jobs, newest first.
func (q *Queue) List() []*ScreenJob {
	q.mu.RLock()
	out := make([]*ScreenJob, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, cloneJob(job))
	}
	q.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Start launches the worker pool. Pending jobs queued before Start, or
// rehydrated from the store, are dispatched first.
func (q *Queue) Start(exec Executor) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true

	pending := make([]string, 0)
	for id, job := range q.jobs {
		if job.Status == StatusPending {
			pending = append(pending, id)
		}
	}
	q.mu.Unlock()

	sort.Strings(pending)
	for _, id := range pending {
		q.dispatch(id)
	}

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(exec)
	}
}

// Stop shuts the worker pool down and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
		q.wg.Wait()
	})
}

func (q *Queue) worker(exec Executor) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		case id := <-q.pendingIDs:
			job, ok := q.markRunning(id)
			if !ok {
				continue
			}

			if err := exec(context.Background(), job); err != nil {
				q.finish(id, StatusFailed, err)
				continue
			}
			q.finish(id, StatusSuccess, nil)
		}
	}
}

func (q *Queue) dispatch(id string) {
	select {
	case q.pendingIDs <- id:
	default:
		go func() { q.pendingIDs <- id }()
	}
}

func (q *Queue) markRunning(id string) (*ScreenJob, bool) {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok || job.Status != StatusPending {
		q.mu.Unlock()
		return nil, false
	}
	job.Status = StatusRunning
	job.UpdatedAt = time.Now()
	snapshot := cloneJob(job)
	q.mu.Unlock()

	q.persist(snapshot)
	return snapshot, true
}

func (q *Queue) finish(id string, status Status, execErr error) {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	job.Status = status
	job.Error = ""
	if execErr != nil {
		job.Error = execErr.Error()
	}
	job.UpdatedAt = time.Now()
	if id, ok := q.dedupe[job.SubtitleFile]; ok && id == job.ID {
		delete(q.dedupe, job.SubtitleFile)
	}
	pruned := q.pruneLocked()
	snapshot := cloneJob(job)
	q.mu.Unlock()

	q.persist(snapshot)
	if q.store != nil {
		for _, prunedID := range pruned {
			if err := q.store.DeleteJob(prunedID); err != nil {
				log.Errorf("delete pruned job %s from store: %v", prunedID, err)
			}
		}
	}
}

// pruneLocked drops the oldest terminal jobs once the map exceeds maxJobs.
// Caller holds q.mu.
func (q *Queue) pruneLocked() []string {
	if q.maxJobs <= 0 || len(q.jobs) <= q.maxJobs {
		return nil
	}

	type candidate struct {
		id        string
		updatedAt time.Time
	}
	terminal := make([]candidate, 0, len(q.jobs))
	for id, job := range q.jobs {
		if job.Status == StatusPending || job.Status == StatusRunning {
			continue
		}
		terminal = append(terminal, candidate{id: id, updatedAt: job.UpdatedAt})
	}
	if len(terminal) == 0 {
		return nil
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].updatedAt.Before(terminal[j].updatedAt)
	})

	toRemove := len(q.jobs) - q.maxJobs
	if toRemove > len(terminal) {
		toRemove = len(terminal)
	}

	pruned := make([]string, 0, toRemove)
	for _, c := range terminal[:toRemove] {
		delete(q.jobs, c.id)
		pruned = append(pruned, c.id)
	}
	return pruned
}

func (q *Queue) persist(job *ScreenJob) {
	if q.store == nil || job == nil {
		return
	}
	if err := q.store.SaveJob(job); err != nil {
		log.Errorf("persist job %s: %v", job.ID, err)
	}
}

// hydrate reloads persisted jobs. Jobs caught mid-run by a crash go back to
// pending so the next Start reruns them.
func (q *Queue) hydrate() {
	if q.store == nil {
		return
	}
	loaded, err := q.store.LoadJobs()
	if err != nil {
		log.Errorf("load jobs from store: %v", err)
		return
	}

	var maxID uint64
	q.mu.Lock()
	for _, raw := range loaded {
		if raw == nil || raw.ID == "" {
			continue
		}
		job := cloneJob(raw)
		if job.Status == StatusRunning {
			job.Status = StatusPending
		}
		q.jobs[job.ID] = job
		if job.Status == StatusPending {
			q.dedupe[job.SubtitleFile] = job.ID
		}
		if n, ok := parseJobID(job.ID); ok && n > maxID {
			maxID = n
		}
	}
	q.idCounter = maxID
	q.mu.Unlock()
}

func parseJobID(id string) (uint64, bool) {
	var n uint64
	if _, err := fmt.Sscanf(id, "job-%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

func cloneJob(job *ScreenJob) *ScreenJob {
	if job == nil {
		return nil
	}
	copied := *job
	return &copied
}
