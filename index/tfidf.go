package index

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/gcbaptista/go-tfidf-search/model"
)

// unseenTermFrequency is the document frequency assumed for terms that no
// indexed document contains, which keeps idf finite for them.
const unseenTermFrequency = 1

// SearchQuery scores every indexed document against the query terms and
// returns them ranked by score descending, ties broken by document id.
//
// score(d) = sum over query terms t of tf(t, d) * idf(t).
// Documents whose score is not finite are left out of the result.
func (m *Model) SearchQuery(terms iter.Seq[string]) []model.ScoredDocument {
	var queryTerms []string
	if terms != nil {
		queryTerms = slices.Collect(terms)
	}

	m.mu.RLock()
	totalDocs := len(m.docs)
	// idf only depends on the corpus, so compute it once per query term
	idfs := make([]float64, len(queryTerms))
	for i, term := range queryTerms {
		idfs[i] = computeIDF(term, totalDocs, m.df)
	}

	result := make([]model.ScoredDocument, 0, totalDocs)
	for id, doc := range m.docs {
		var score float64
		for i, term := range queryTerms {
			score += computeTF(term, doc) * idfs[i]
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		result = append(result, model.ScoredDocument{DocumentID: id, Score: score})
	}
	m.mu.RUnlock()

	rank(result)
	return result
}

// rank sorts by score descending then document id ascending.
// Callers must have removed NaN scores: they do not order.
func rank(docs []model.ScoredDocument) {
	slices.SortFunc(docs, func(a, b model.ScoredDocument) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
}

// computeTF is count(t, d) / |d|, and 0 for an empty document.
func computeTF(term string, doc *model.DocumentRecord) float64 {
	if doc.TotalTerms == 0 {
		return 0
	}
	return float64(doc.Count(term)) / float64(doc.TotalTerms)
}

// computeIDF is log10(N / df(t)) with df(t) falling back to
// unseenTermFrequency for terms missing from the table.
func computeIDF(term string, totalDocs int, df map[string]int) float64 {
	freq, ok := df[term]
	if !ok || freq <= 0 {
		freq = unseenTermFrequency
	}
	return math.Log10(float64(totalDocs) / float64(freq))
}
