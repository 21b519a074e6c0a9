package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-tfidf-search/index"
)

type sample struct {
	Name  string
	Count int
	When  time.Time
}

func TestSaveAndLoadGob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sample.gob")
	want := sample{Name: "corpus", Count: 3, When: time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)}

	require.NoError(t, SaveGob(path, want))

	var got sample
	require.NoError(t, LoadGob(path, &got))
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Count, got.Count)
	assert.True(t, want.When.Equal(got.When))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSaveGob_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.gob")
	require.NoError(t, SaveGob(path, sample{Name: "first"}))
	require.NoError(t, SaveGob(path, sample{Name: "second"}))

	var got sample
	require.NoError(t, LoadGob(path, &got))
	assert.Equal(t, "second", got.Name)
}

func TestSaveGob_EncodeFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.gob")

	// gob cannot encode channels
	err := SaveGob(path, struct{ C chan int }{C: make(chan int)})
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestLoadGob_Missing(t *testing.T) {
	var got sample
	err := LoadGob(filepath.Join(t.TempDir(), "missing.gob"), &got)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadGob_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	require.NoError(t, os.WriteFile(path, []byte("definitely not gob"), 0o600))

	var got sample
	err := LoadGob(path, &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}

func TestModelSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	modified := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	m := index.NewModel()
	m.AddDocument("a.txt", modified, func(yield func(string) bool) {
		for _, term := range []string{"the", "cat", "sat"} {
			if !yield(term) {
				return
			}
		}
	})
	require.NoError(t, SaveGob(path, m))

	loaded := index.NewModel()
	require.NoError(t, LoadGob(path, loaded))

	assert.Equal(t, m.DocumentIDs(), loaded.DocumentIDs())
	assert.False(t, loaded.RequiresReindexing("a.txt", modified))
	assert.True(t, loaded.RequiresReindexing("a.txt", modified.Add(time.Second)))
	assert.Equal(t, 1, loaded.DocumentFrequency("cat"))
}
