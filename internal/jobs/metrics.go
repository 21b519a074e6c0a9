package jobs

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/gcbaptista/go-tfidf-search/model"
)

// JobMetricsData is a point-in-time view of job statistics.
type JobMetricsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	JobsCancelled        int64                     `json:"jobs_cancelled"`
	ActiveJobs           int                       `json:"active_jobs"`
	SuccessRate          float64                   `json:"success_rate"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// JobMetrics accumulates counters for created and finished jobs.
type JobMetrics struct {
	mu          sync.Mutex
	created     int64
	finished    map[model.JobStatus]int64
	byType      map[model.JobType]int64
	totalTime   time.Duration
	timedRuns   int64
	lastUpdated time.Time
}

// NewJobMetrics creates an empty collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		finished:    make(map[model.JobStatus]int64),
		byType:      make(map[model.JobType]int64),
		lastUpdated: time.Now(),
	}
}

func (m *JobMetrics) recordCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	m.byType[jobType]++
	m.lastUpdated = time.Now()
}

func (m *JobMetrics) recordFinished(_ model.JobType, status model.JobStatus, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished[status]++
	if status == model.JobStatusCompleted {
		m.totalTime += took
		m.timedRuns++
	}
	m.lastUpdated = time.Now()
}

func (m *JobMetrics) snapshot(active int) JobMetricsData {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := JobMetricsData{
		JobsCreated:   m.created,
		JobsCompleted: m.finished[model.JobStatusCompleted],
		JobsFailed:    m.finished[model.JobStatusFailed],
		JobsCancelled: m.finished[model.JobStatusCancelled],
		ActiveJobs:    active,
		SuccessRate:   1.0,
		JobsByType:    make(map[model.JobType]int64, len(m.byType)),
		JobsByStatus:  make(map[model.JobStatus]int64, len(m.finished)),
		LastUpdated:   m.lastUpdated,
	}
	for k, v := range m.byType {
		data.JobsByType[k] = v
	}
	for k, v := range m.finished {
		data.JobsByStatus[k] = v
	}
	if ended := data.JobsCompleted + data.JobsFailed; ended > 0 {
		data.SuccessRate = float64(data.JobsCompleted) / float64(ended)
	}
	if m.timedRuns > 0 {
		data.AverageExecutionTime = m.totalTime / time.Duration(m.timedRuns)
	}
	return data
}

func sortNewestFirst(jobs []*model.Job) {
	slices.SortFunc(jobs, func(a, b *model.Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
