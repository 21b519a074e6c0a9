package index

import (
	"fmt"
	"testing"
)

// generateCorpus builds count documents sharing a small vocabulary so that
// document frequencies overlap the way they do in real corpora.
func generateCorpus(count int) map[string]string {
	corpus := make(map[string]string, count)
	for i := 0; i < count; i++ {
		corpus[fmt.Sprintf("doc_%d.txt", i)] = fmt.Sprintf(
			"this is test document number %d about topic_%d with tag_%d and some shared words",
			i, i%50, i%10)
	}
	return corpus
}

func BenchmarkAddDocument(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			corpus := generateCorpus(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m := NewModel()
				for id, content := range corpus {
					m.AddDocument(id, baseTime, words(content))
				}
			}
		})
	}
}

func BenchmarkReindexSameDocument(b *testing.B) {
	m := NewModel()
	for id, content := range generateCorpus(1000) {
		m.AddDocument(id, baseTime, words(content))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.AddDocument("doc_1.txt", baseTime, words("this is a rewritten document"))
	}
}

func BenchmarkSearchQuery(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			m := NewModel()
			for id, content := range generateCorpus(size) {
				m.AddDocument(id, baseTime, words(content))
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.SearchQuery(words("topic_7 shared document"))
			}
		})
	}
}
