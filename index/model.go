// Package index holds the TF-IDF corpus model: one term-count record per
// document plus the corpus-wide document-frequency table.
package index

import (
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/gcbaptista/go-tfidf-search/model"
)

// Model is the in-memory TF-IDF index.
//
// docs and df are guarded by the same lock so a reader never observes one
// updated without the other. For every term t, df[t] equals the number of
// records in docs whose TermCounts contain t, and no key is kept at zero.
type Model struct {
	mu   sync.RWMutex
	docs map[string]*model.DocumentRecord
	df   map[string]int
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		docs: make(map[string]*model.DocumentRecord),
		df:   make(map[string]int),
	}
}

// AddDocument indexes terms under id, replacing any previous record for id.
// The record is built before the write lock is taken; the removal of the old
// record and insertion of the new one happen in one critical section.
func (m *Model) AddDocument(id string, lastModified time.Time, terms iter.Seq[string]) {
	rec := model.NewDocumentRecord(lastModified, terms)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeDocumentUnsafe(id)
	for term := range rec.TermCounts {
		m.df[term]++
	}
	m.docs[id] = rec
}

// RemoveDocument drops the record for id and rolls back its document
// frequencies. Unknown ids are a no-op and report false.
func (m *Model) RemoveDocument(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeDocumentUnsafe(id)
}

// removeDocumentUnsafe assumes the caller holds the write lock.
func (m *Model) removeDocumentUnsafe(id string) bool {
	rec, ok := m.docs[id]
	if !ok {
		return false
	}
	delete(m.docs, id)
	// one decrement per distinct term: df counts documents, not occurrences
	for term := range rec.TermCounts {
		if m.df[term] <= 1 {
			delete(m.df, term)
			continue
		}
		m.df[term]--
	}
	return true
}

// RequiresReindexing reports whether id is indexed with a timestamp strictly
// older than lastModified. Unknown documents report false: adding a new
// document is the caller's decision.
func (m *Model) RequiresReindexing(id string, lastModified time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.docs[id]
	return ok && rec.LastModified.Before(lastModified)
}

// Contains reports whether a record exists for id.
func (m *Model) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[id]
	return ok
}

// Document returns a copy of the record for id.
func (m *Model) Document(id string) (model.DocumentRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.docs[id]
	if !ok {
		return model.DocumentRecord{}, false
	}
	return rec.Clone(), true
}

// DocumentIDs returns all indexed ids in ascending order.
func (m *Model) DocumentIDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// DocumentFrequency returns the number of documents containing term.
func (m *Model) DocumentFrequency(term string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.df[term]
}

// Stats returns the number of indexed documents and distinct terms.
func (m *Model) Stats() (documents int, terms int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), len(m.df)
}
