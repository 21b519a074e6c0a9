package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-tfidf-search/internal/jobs"
	"github.com/gcbaptista/go-tfidf-search/model"
)

// ReindexAsync starts a reindex job and returns its ID. While a reindex job
// is still pending or running, its ID is returned instead of a new one.
func (e *Engine) ReindexAsync() (string, error) {
	root := e.settings.Index.Root
	if jobID, ok := e.activeJob(model.JobTypeReindex, root); ok {
		return jobID, nil
	}

	jobID := e.jobManager.CreateJob(model.JobTypeReindex, root, map[string]string{
		"operation": "reindex",
	})
	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeReindexJob(ctx, job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start reindex job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeReindexJob(ctx context.Context, jobID string) error {
	e.jobManager.UpdateJobProgress(jobID, 0, 0, "walking corpus")
	summary, err := e.reindex(ctx, func(done, total int) {
		e.jobManager.UpdateJobProgress(jobID, done, total, "indexing files")
	})
	if err != nil {
		return err
	}
	e.jobManager.UpdateJobProgress(jobID, summary.Indexed+summary.Failed, summary.Indexed+summary.Failed,
		fmt.Sprintf("indexed %d, skipped %d, removed %d, failed %d",
			summary.Indexed, summary.Skipped, summary.Removed, summary.Failed))
	return nil
}

// PersistAsync writes the snapshot in a background job and returns its ID.
func (e *Engine) PersistAsync() (string, error) {
	path := e.settings.Index.SnapshotPath
	jobID := e.jobManager.CreateJob(model.JobTypePersistSnapshot, path, map[string]string{
		"operation": "persist_snapshot",
	})
	err := e.jobManager.ExecuteJob(jobID, func(_ context.Context, _ *model.Job) error {
		return e.Persist()
	})
	if err != nil {
		return "", fmt.Errorf("failed to start persist job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) activeJob(jobType model.JobType, target string) (string, bool) {
	for _, job := range e.jobManager.ListJobs(target, nil) {
		if job.Type == jobType && !job.IsFinished() {
			return job.ID, true
		}
	}
	return "", false
}

// GetJob returns the job with the given ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns jobs for target, optionally filtered by status.
func (e *Engine) ListJobs(target string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(target, status)
}

// GetJobMetrics returns job performance metrics.
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}
