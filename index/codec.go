package index

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"maps"

	"github.com/gcbaptista/go-tfidf-search/internal/logger"
	"github.com/gcbaptista/go-tfidf-search/model"
)

// gobModelData is the snapshot layout of a Model. It excludes the mutex.
// time.Time is gob-encoded through MarshalBinary, which keeps nanoseconds and
// the zone offset, so timestamps round-trip identically across platforms.
type gobModelData struct {
	Docs map[string]*model.DocumentRecord
	DF   map[string]int
}

// GobEncode implements the gob.GobEncoder interface for Model.
func (m *Model) GobEncode() ([]byte, error) {
	m.mu.RLock() // consistent view of both maps
	defer m.mu.RUnlock()

	dataToEncode := gobModelData{
		Docs: m.docs,
		DF:   m.df,
	}

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(dataToEncode); err != nil {
		return nil, fmt.Errorf("failed to gob encode model: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for Model.
// Records are repaired before use: non-positive term counts are dropped and
// TotalTerms is recomputed from the counts. A document-frequency table that
// disagrees with the decoded documents is rebuilt from them.
func (m *Model) GobDecode(data []byte) error {
	decodedData := gobModelData{}

	decoder := gob.NewDecoder(bytes.NewBuffer(data))
	if err := decoder.Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode model: %w", err)
	}

	docs := decodedData.Docs
	if docs == nil {
		docs = make(map[string]*model.DocumentRecord)
	}
	log := logger.WithComponent("index")
	for id, rec := range docs {
		if rec == nil {
			delete(docs, id)
			continue
		}
		if rec.TermCounts == nil {
			rec.TermCounts = make(map[string]int)
		}
		if total := repairTermCounts(rec.TermCounts); total != rec.TotalTerms {
			log.Warn("snapshot record total out of sync, recomputed from term counts",
				"id", id, "stored_total", rec.TotalTerms, "recomputed_total", total)
			rec.TotalTerms = total
		}
	}

	df := buildDocumentFrequency(docs)
	if !maps.Equal(df, decodedData.DF) {
		log.Warn("snapshot document frequencies out of sync, rebuilt from documents",
			"stored_terms", len(decodedData.DF), "rebuilt_terms", len(df))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = docs
	m.df = df
	return nil
}

// repairTermCounts deletes non-positive counts and returns the sum of the rest.
func repairTermCounts(counts map[string]int) int {
	total := 0
	for term, n := range counts {
		if n <= 0 {
			delete(counts, term)
			continue
		}
		total += n
	}
	return total
}

func buildDocumentFrequency(docs map[string]*model.DocumentRecord) map[string]int {
	df := make(map[string]int)
	for _, rec := range docs {
		for term := range rec.TermCounts {
			df[term]++
		}
	}
	return df
}
