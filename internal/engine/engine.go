// Package engine owns the lifecycle of the corpus index: it loads the
// snapshot, keeps the model in sync with the corpus directory, answers
// queries and persists changes.
package engine

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gcbaptista/go-tfidf-search/config"
	"github.com/gcbaptista/go-tfidf-search/index"
	"github.com/gcbaptista/go-tfidf-search/internal/errors"
	"github.com/gcbaptista/go-tfidf-search/internal/indexing"
	"github.com/gcbaptista/go-tfidf-search/internal/jobs"
	"github.com/gcbaptista/go-tfidf-search/internal/logger"
	"github.com/gcbaptista/go-tfidf-search/internal/metrics"
	"github.com/gcbaptista/go-tfidf-search/internal/search"
	"github.com/gcbaptista/go-tfidf-search/internal/tokenizer"
	"github.com/gcbaptista/go-tfidf-search/model"
	"github.com/gcbaptista/go-tfidf-search/services"
)

// topTermsLimit is how many of a document's most frequent terms Document reports.
const topTermsLimit = 10

// Engine manages the corpus index.
// It implements the services.IndexManager and services.JobManager interfaces.
type Engine struct {
	settings   config.Settings
	model      *index.Model
	indexer    *indexing.Service
	searcher   *search.Service
	jobManager *jobs.Manager
	metrics    *metrics.Metrics
	log        *slog.Logger

	reindexMu sync.Mutex // one reindex pass at a time
	persistMu sync.Mutex // one snapshot write at a time

	statsMu     sync.RWMutex
	lastReindex *services.ReindexSummary
}

// New builds an engine from settings, loading the snapshot when one exists.
// A missing snapshot starts an empty index; an unreadable one is an error.
// m may be nil to disable metrics.
func New(settings *config.Settings, m *metrics.Metrics) (*Engine, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	cfg := *settings
	cfg.ApplyDefaults()
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, errors.NewValidationError("settings", fmt.Sprintf("%v", problems))
	}

	e := &Engine{
		settings: cfg,
		model:    index.NewModel(),
		metrics:  m,
		log:      logger.WithComponent("engine"),
	}
	if err := e.loadSnapshot(); err != nil {
		return nil, err
	}

	tokenizerOpts := tokenizer.Options{Stem: cfg.Index.StemTerms}
	indexer, err := indexing.NewService(e.model, indexing.Options{
		Extensions:   cfg.Index.Extensions,
		SkipDirs:     cfg.Index.SkipDirs,
		Workers:      cfg.Index.Workers,
		MaxFileBytes: cfg.Index.MaxFileBytes,
		Tokenizer:    tokenizerOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create indexing service: %w", err)
	}
	searcher, err := search.NewService(e.model, search.Options{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		Tokenizer:       tokenizerOpts,
	}, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	e.indexer = indexer
	e.searcher = searcher

	e.jobManager = jobs.NewManager(cfg.Jobs.MaxWorkers, m)
	e.jobManager.Start()

	e.updateCorpusGauges()
	return e, nil
}

// Close stops background jobs, cancelling any reindex in progress.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

// Settings returns the effective settings.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// Search runs a free-text query against the index.
func (e *Engine) Search(query services.SearchQuery) (services.SearchResult, error) {
	return e.searcher.Search(query)
}

// Reindex brings the index in line with the corpus root and persists the
// snapshot when anything changed.
func (e *Engine) Reindex(ctx context.Context) (services.ReindexSummary, error) {
	return e.reindex(ctx, nil)
}

func (e *Engine) reindex(ctx context.Context, progress indexing.ProgressFunc) (services.ReindexSummary, error) {
	e.reindexMu.Lock()
	defer e.reindexMu.Unlock()

	root := e.settings.Index.Root
	stats, err := e.indexer.IndexRoot(ctx, root, progress)
	e.metrics.ObserveIndexing(stats.Indexed, stats.Skipped, stats.Removed, stats.Failed, stats.Duration)
	e.updateCorpusGauges()

	summary := services.ReindexSummary{
		Indexed:    stats.Indexed,
		Skipped:    stats.Skipped,
		Removed:    stats.Removed,
		Failed:     stats.Failed,
		DurationMs: stats.Duration.Milliseconds(),
		FinishedAt: time.Now(),
	}
	if err != nil {
		// documents indexed before the interruption are kept in memory and
		// written with the next successful pass
		return summary, fmt.Errorf("failed to reindex %s: %w", root, err)
	}

	e.statsMu.Lock()
	e.lastReindex = &summary
	e.statsMu.Unlock()

	if stats.Changed() {
		if err := e.Persist(); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// Document describes the indexed document id.
func (e *Engine) Document(id string) (model.DocumentInfo, error) {
	rec, ok := e.model.Document(id)
	if !ok {
		return model.DocumentInfo{}, errors.NewDocumentNotFoundError(id)
	}
	return model.DocumentInfo{
		DocumentID:    id,
		TotalTerms:    rec.TotalTerms,
		DistinctTerms: len(rec.TermCounts),
		LastModified:  rec.LastModified,
		TopTerms:      topTerms(rec.TermCounts, topTermsLimit),
	}, nil
}

// ListDocuments returns one page of indexed ids in ascending order.
// page is 1-based; pageSize is clamped to the search page size limits.
func (e *Engine) ListDocuments(page, pageSize int) services.DocumentPage {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = e.settings.Search.DefaultPageSize
	case pageSize > e.settings.Search.MaxPageSize:
		pageSize = e.settings.Search.MaxPageSize
	}

	ids := e.model.DocumentIDs()
	start, end := services.PageBounds(page, pageSize, len(ids))
	return services.DocumentPage{
		DocumentIDs: slices.Clone(ids[start:end]),
		Total:       len(ids),
		Page:        page,
		PageSize:    pageSize,
	}
}

// RemoveDocument drops id from the index and persists the snapshot.
// The file itself is untouched; the next reindex adds it back if it still exists.
func (e *Engine) RemoveDocument(id string) error {
	if !e.model.RemoveDocument(id) {
		return errors.NewDocumentNotFoundError(id)
	}
	e.metrics.DocumentRemoved()
	e.updateCorpusGauges()
	e.log.Info("document removed", "id", id)
	return e.Persist()
}

// Stats describes the in-memory corpus.
func (e *Engine) Stats() services.IndexStats {
	docs, terms := e.model.Stats()
	stats := services.IndexStats{
		Documents:    docs,
		Terms:        terms,
		Root:         e.settings.Index.Root,
		SnapshotPath: e.settings.Index.SnapshotPath,
	}

	e.statsMu.RLock()
	if e.lastReindex != nil {
		last := *e.lastReindex
		stats.LastReindex = &last
	}
	e.statsMu.RUnlock()
	return stats
}

func (e *Engine) updateCorpusGauges() {
	docs, terms := e.model.Stats()
	e.metrics.SetCorpusSize(docs, terms)
}

// topTerms returns up to limit terms by count descending, then term ascending.
func topTerms(counts map[string]int, limit int) []model.TermCount {
	all := make([]model.TermCount, 0, len(counts))
	for term, count := range counts {
		all = append(all, model.TermCount{Term: term, Count: count})
	}
	slices.SortFunc(all, func(a, b model.TermCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Term, b.Term)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}
