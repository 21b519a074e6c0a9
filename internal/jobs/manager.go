package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-tfidf-search/internal/errors"
	"github.com/gcbaptista/go-tfidf-search/internal/logger"
	"github.com/gcbaptista/go-tfidf-search/model"
)

// Observer is notified once per finished job.
type Observer interface {
	ObserveJob(jobType, status string)
}

// Func is the body of a job. ctx is cancelled when the manager stops.
type Func func(ctx context.Context, job *model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	workers  chan struct{} // limits concurrent jobs
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	metrics  *JobMetrics
	observer Observer
	log      *slog.Logger
}

// NewManager creates a job manager running at most maxWorkers jobs at once.
// observer may be nil.
func NewManager(maxWorkers int, observer Observer) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:     make(map[string]*model.Job),
		workers:  make(chan struct{}, maxWorkers),
		ctx:      ctx,
		cancel:   cancel,
		metrics:  NewJobMetrics(),
		observer: observer,
		log:      logger.WithComponent("jobs"),
	}
}

// Start begins background cleanup of finished jobs
func (m *Manager) Start() {
	m.log.Info("job manager started", "max_workers", cap(m.workers))
	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return. Safe to call twice.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		m.log.Info("job manager stopped")
	})
}

// CreateJob registers a pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, target string, metadata map[string]string) string {
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Target:    target,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.metrics.recordCreated(jobType)
	m.log.Debug("job created", "job_id", job.ID, "type", job.Type, "target", target)
	return job.ID
}

// GetJob returns a snapshot of the job with the given ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns jobs for target, newest first, optionally filtered by status.
// An empty target matches every job.
func (m *Manager) ListJobs(target string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if target != "" && job.Target != target {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	m.mu.RUnlock()

	sortNewestFirst(result)
	return result
}

// ExecuteJob moves a pending job to running and runs fn on a worker slot.
// It returns once fn has been scheduled, not when it finishes.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	if m.ctx.Err() != nil {
		m.finish(jobID, model.JobStatusCancelled, "job manager shutting down", 0)
		return fmt.Errorf("job manager is shutting down")
	}

	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	// the job func gets its own copy; progress goes through UpdateJobProgress
	view := copyJob(job)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		select {
		case m.workers <- struct{}{}:
		case <-m.ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "job manager shutting down", 0)
			return
		}
		defer func() { <-m.workers }()

		start := time.Now()
		err := fn(m.ctx, view)
		took := time.Since(start)

		switch {
		case err != nil && m.ctx.Err() != nil:
			m.finish(jobID, model.JobStatusCancelled, err.Error(), took)
			m.log.Warn("job cancelled", "job_id", jobID, "duration", took, "error", err)
		case err != nil:
			m.finish(jobID, model.JobStatusFailed, err.Error(), took)
			m.log.Error("job failed", "job_id", jobID, "duration", took, "error", err)
		default:
			m.finish(jobID, model.JobStatusCompleted, "", took)
			m.log.Info("job completed", "job_id", jobID, "duration", took)
		}
	}()

	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string, took time.Duration) {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return
	}
	job.Status = status
	job.Error = errorMsg
	now := time.Now()
	job.CompletedAt = &now
	jobType := job.Type
	// under mu: a job observed as finished is already counted
	m.metrics.recordFinished(jobType, status, took)
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.ObserveJob(string(jobType), string(status))
	}
}

func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(24 * time.Hour)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	m.mu.Lock()
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}
	m.mu.Unlock()

	if cleaned > 0 {
		m.log.Info("cleaned up old jobs", "count", cleaned)
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.snapshot(m.activeJobs())
}

func (m *Manager) activeJobs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := 0
	for _, job := range m.jobs {
		if !job.IsFinished() {
			active++
		}
	}
	return active
}

func copyJob(job *model.Job) *model.Job {
	c := *job
	if job.Progress != nil {
		p := *job.Progress
		c.Progress = &p
	}
	if job.Metadata != nil {
		c.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
