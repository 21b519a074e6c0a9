package model

import (
	"iter"
	"maps"
	"time"
)

// DocumentRecord holds the term statistics of one indexed document.
// A record is built once per indexing pass and replaced wholesale on reindex; it is never mutated in place.
type DocumentRecord struct {
	TermCounts   map[string]int // term -> number of occurrences in the document
	TotalTerms   int            // sum of TermCounts values
	LastModified time.Time      // modification time of the source content when it was indexed
}

// NewDocumentRecord consumes terms once and counts every occurrence.
// Terms are used verbatim; normalization belongs to the tokenizer.
func NewDocumentRecord(lastModified time.Time, terms iter.Seq[string]) *DocumentRecord {
	rec := &DocumentRecord{
		TermCounts:   make(map[string]int),
		LastModified: lastModified,
	}
	if terms == nil {
		return rec
	}
	for term := range terms {
		rec.TermCounts[term]++
		rec.TotalTerms++
	}
	return rec
}

// Count returns the number of occurrences of term, 0 when absent.
func (d *DocumentRecord) Count(term string) int {
	return d.TermCounts[term]
}

// Clone returns a deep copy so callers never alias index-owned maps.
func (d *DocumentRecord) Clone() DocumentRecord {
	return DocumentRecord{
		TermCounts:   maps.Clone(d.TermCounts),
		TotalTerms:   d.TotalTerms,
		LastModified: d.LastModified,
	}
}

// TermCount pairs a term with its occurrence count.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// DocumentInfo is the externally visible summary of an indexed document.
type DocumentInfo struct {
	DocumentID    string      `json:"document_id"`
	TotalTerms    int         `json:"total_terms"`
	DistinctTerms int         `json:"distinct_terms"`
	LastModified  time.Time   `json:"last_modified"`
	TopTerms      []TermCount `json:"top_terms"`
}

// ScoredDocument is one ranked search result.
type ScoredDocument struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
}
