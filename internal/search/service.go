// Package search answers free-text queries against an index.Model.
package search

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-tfidf-search/index"
	"github.com/gcbaptista/go-tfidf-search/internal/errors"
	"github.com/gcbaptista/go-tfidf-search/internal/tokenizer"
	"github.com/gcbaptista/go-tfidf-search/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Observer receives the outcome of each query. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveSearch(results int, took time.Duration, err error)
}

// Options configures paging and query tokenization. Tokenizer must match the
// options documents were indexed with.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Tokenizer       tokenizer.Options
}

// Service implements the search logic for the corpus index.
// It fulfills the services.Searcher interface.
type Service struct {
	model    *index.Model
	opts     Options
	observer Observer
}

// NewService creates a new search Service. observer may be nil.
func NewService(model *index.Model, opts Options, observer Observer) (*Service, error) {
	if model == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = maxPageSize
	}
	if opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = opts.MaxPageSize
	}
	return &Service{model: model, opts: opts, observer: observer}, nil
}

// Search tokenizes the query, ranks every document and returns the requested page.
// A query without terms returns an empty page.
func (s *Service) Search(query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()

	if query.Page < 0 {
		err := errors.NewValidationError("page", "must be greater than or equal to 1")
		s.observe(0, startTime, err)
		return services.SearchResult{}, err
	}
	page := query.Page
	if page == 0 {
		page = 1
	}
	pageSize := s.pageSize(query.PageSize)

	terms := tokenizer.Tokenize(query.QueryString, s.opts.Tokenizer)
	if len(terms) == 0 {
		s.observe(0, startTime, nil)
		return services.SearchResult{
			Hits:     []services.HitResult{},
			Page:     page,
			PageSize: pageSize,
			Took:     time.Since(startTime).Milliseconds(),
			QueryId:  uuid.New().String(),
		}, nil
	}

	ranked := s.model.SearchQuery(slices.Values(terms))

	totalHits := len(ranked)
	startIndex, endIndex := services.PageBounds(page, pageSize, totalHits)
	hits := []services.HitResult{}
	for i := startIndex; i < endIndex; i++ {
		hits = append(hits, services.HitResult{
			DocumentID: ranked[i].DocumentID,
			Score:      ranked[i].Score,
			Rank:       i + 1,
		})
	}

	s.observe(totalHits, startTime, nil)
	return services.SearchResult{
		Hits:     hits,
		Total:    totalHits,
		Page:     page,
		PageSize: pageSize,
		Took:     time.Since(startTime).Milliseconds(),
		QueryId:  uuid.New().String(),
	}, nil
}

func (s *Service) pageSize(requested int) int {
	switch {
	case requested <= 0:
		return s.opts.DefaultPageSize
	case requested > s.opts.MaxPageSize:
		return s.opts.MaxPageSize
	default:
		return requested
	}
}

func (s *Service) observe(results int, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveSearch(results, time.Since(start), err)
	}
}
