// Package testing provides utilities and helpers for testing the search service.
package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-tfidf-search/config"
	"github.com/gcbaptista/go-tfidf-search/internal/engine"
	"github.com/gcbaptista/go-tfidf-search/internal/metrics"
	"github.com/gcbaptista/go-tfidf-search/model"
	"github.com/gcbaptista/go-tfidf-search/services"
)

// CorpusTime is the modification time WriteCorpus gives every file.
var CorpusTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// DefaultCorpus is a small corpus with distinct and shared terms.
var DefaultCorpus = map[string]string{
	"animals/cat.txt":  "The cat sat on the mat. The cat purred.",
	"animals/dog.txt":  "The dog sat on the log.",
	"notes/go.md":      "# Go\nGoroutines and channels make concurrency simple.",
	"pages/index.html": "<html><body><h1>Welcome</h1><p>The cat video gallery</p></body></html>",
}

// WriteCorpus writes files (relative path -> content) under root with mtime CorpusTime.
func WriteCorpus(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content, CorpusTime)
	}
}

// WriteFile writes one file and sets its modification time.
func WriteFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// TestSettings returns settings indexing root with the snapshot in a temp dir.
func TestSettings(t *testing.T, root string) *config.Settings {
	t.Helper()
	settings := config.Default()
	settings.Index.Root = root
	settings.Index.SnapshotPath = filepath.Join(t.TempDir(), "snapshot", "index.gob")
	settings.Index.Workers = 2
	settings.Logging.Level = "error"
	return settings
}

// CreateTestEngine creates an engine over root with isolated metrics.
// The engine is closed when the test ends.
func CreateTestEngine(t *testing.T, settings *config.Settings) (*engine.Engine, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	eng, err := engine.New(settings, m)
	require.NoError(t, err, "Failed to create test engine")
	t.Cleanup(eng.Close)
	return eng, m
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

// WaitForJobCompletion polls a job until it completes or times out
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended as %s: %s", jobID, job.Status, job.Error)
				return nil
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedTarget string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedTarget, job.Target, "Job target should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// SearchTestCase represents a search query and the documents expected on top
type SearchTestCase struct {
	Name        string
	Query       string
	ExpectedTop []string // leading document ids, in order
	ExpectedLen int      // -1 skips the length check
}

// RunSearchTests runs a suite of search test cases
func RunSearchTests(t *testing.T, searcher services.Searcher, tests []SearchTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := searcher.Search(services.SearchQuery{QueryString: tt.Query})
			require.NoError(t, err, "Search should not fail")

			if tt.ExpectedLen >= 0 {
				assert.Len(t, result.Hits, tt.ExpectedLen, "Unexpected number of hits")
			}
			require.GreaterOrEqual(t, len(result.Hits), len(tt.ExpectedTop))
			for i, id := range tt.ExpectedTop {
				assert.Equal(t, id, result.Hits[i].DocumentID, "Unexpected document at rank %d", i+1)
			}
		})
	}
}
