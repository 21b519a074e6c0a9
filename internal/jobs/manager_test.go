package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gcbaptista/go-tfidf-search/internal/errors"
	"github.com/gcbaptista/go-tfidf-search/model"
)

type recordingObserver struct {
	mu       sync.Mutex
	observed []string
}

func (r *recordingObserver) ObserveJob(jobType, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, jobType+":"+status)
}

func (r *recordingObserver) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.observed...)
}

func waitForStatus(t *testing.T, m *Manager, jobID string, want model.JobStatus) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.GetJob(jobID)
		return err == nil && job.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2, nil)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReindex, "/corpus", map[string]string{"trigger": "api"})
	require.NotEmpty(t, jobID)

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeReindex, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "/corpus", job.Target)
	assert.Equal(t, "api", job.Metadata["trigger"])

	// snapshots do not alias manager state
	job.Metadata["trigger"] = "changed"
	again, _ := manager.GetJob(jobID)
	assert.Equal(t, "api", again.Metadata["trigger"])
}

func TestJobManager_GetJobNotFound(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	assert.True(t, errors.Is(err, apperrors.ErrJobNotFound))
}

func TestJobManager_ExecuteJob(t *testing.T) {
	observer := &recordingObserver{}
	manager := NewManager(2, observer)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)
	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(job.ID, 5, 10, "halfway")
		manager.UpdateJobProgress(job.ID, 10, 10, "done")
		return nil
	})
	require.NoError(t, err)

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	require.NotNil(t, job.Progress)
	assert.Equal(t, 10, job.Progress.Current)
	assert.Equal(t, 100.0, job.Progress.GetProgressPercentage())
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
	assert.True(t, job.IsFinished())

	assert.Eventually(t, func() bool {
		return len(observer.events()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"reindex:completed"}, observer.events())
}

func TestJobManager_ExecuteJobFailure(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypePersistSnapshot, "index.gob", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return errors.New("disk full")
	}))

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	assert.Equal(t, "disk full", job.Error)

	metrics := manager.GetMetrics()
	assert.Equal(t, int64(1), metrics.JobsFailed)
	assert.Equal(t, 0.0, metrics.SuccessRate)
}

func TestJobManager_ExecuteJobTwice(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }))

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil })
	assert.Error(t, err)

	err = manager.ExecuteJob("missing", func(ctx context.Context, job *model.Job) error { return nil })
	assert.True(t, errors.Is(err, apperrors.ErrJobNotFound))
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1, nil)

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	<-started
	manager.Stop()
	manager.Stop()

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCancelled, job.Status)

	late := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)
	assert.Error(t, manager.ExecuteJob(late, func(ctx context.Context, job *model.Job) error { return nil }))
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	first := manager.CreateJob(model.JobTypeReindex, "/a", nil)
	time.Sleep(time.Millisecond)
	second := manager.CreateJob(model.JobTypeReindex, "/a", nil)
	manager.CreateJob(model.JobTypeReindex, "/b", nil)

	jobs := manager.ListJobs("/a", nil)
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, first, jobs[1].ID)

	assert.Len(t, manager.ListJobs("", nil), 3)

	completed := model.JobStatusCompleted
	assert.Empty(t, manager.ListJobs("", &completed))
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }))
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	pending := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)

	assert.Equal(t, 0, manager.CleanupOldJobs(time.Hour))
	assert.Equal(t, 1, manager.CleanupOldJobs(-time.Second))

	_, err := manager.GetJob(jobID)
	assert.Error(t, err)
	_, err = manager.GetJob(pending)
	assert.NoError(t, err)
}

func TestJobManager_Metrics(t *testing.T) {
	manager := NewManager(2, nil)
	defer manager.Stop()

	for i := 0; i < 3; i++ {
		jobID := manager.CreateJob(model.JobTypeReindex, "/corpus", nil)
		require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }))
		waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	}
	manager.CreateJob(model.JobTypePersistSnapshot, "index.gob", nil)

	metrics := manager.GetMetrics()
	assert.Equal(t, int64(4), metrics.JobsCreated)
	assert.Equal(t, int64(3), metrics.JobsCompleted)
	assert.Equal(t, 1, metrics.ActiveJobs)
	assert.Equal(t, 1.0, metrics.SuccessRate)
	assert.Equal(t, int64(3), metrics.JobsByType[model.JobTypeReindex])
	assert.Equal(t, int64(1), metrics.JobsByType[model.JobTypePersistSnapshot])
}
