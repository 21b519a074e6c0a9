package services

import (
	"context"
	"time"

	"github.com/gcbaptista/go-tfidf-search/model"
)

// HitResult is one ranked document in a page of search results.
type HitResult struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"` // 1-based position in the full ranking
}

type SearchResult struct {
	Hits     []HitResult `json:"hits"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Took     int64       `json:"took"`     // milliseconds
	QueryId  string      `json:"query_id"` // unique UUID for this search query
}

type SearchQuery struct {
	QueryString string `json:"query"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

// DocumentPage is one page of indexed document ids in ascending order.
type DocumentPage struct {
	DocumentIDs []string `json:"document_ids"`
	Total       int      `json:"total"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// ReindexSummary describes the outcome of the last completed reindex pass.
type ReindexSummary struct {
	Indexed    int       `json:"indexed"`
	Skipped    int       `json:"skipped"`
	Removed    int       `json:"removed"`
	Failed     int       `json:"failed"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// IndexStats describes the corpus currently held in memory.
type IndexStats struct {
	Documents    int             `json:"documents"`
	Terms        int             `json:"terms"`
	Root         string          `json:"root"`
	SnapshotPath string          `json:"snapshot_path"`
	LastReindex  *ReindexSummary `json:"last_reindex,omitempty"`
}

// Searcher defines operations for querying the index
type Searcher interface {
	Search(query SearchQuery) (SearchResult, error)
}

// IndexManager manages the lifecycle of the corpus index
type IndexManager interface {
	Searcher
	Document(id string) (model.DocumentInfo, error)
	ListDocuments(page, pageSize int) DocumentPage
	RemoveDocument(id string) error
	Reindex(ctx context.Context) (ReindexSummary, error)
	ReindexAsync() (string, error) // returns job ID
	Stats() IndexStats
	Persist() error
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(target string, status *model.JobStatus) []*model.Job
}
