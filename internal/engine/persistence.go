package engine

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/gcbaptista/go-tfidf-search/internal/errors"
	"github.com/gcbaptista/go-tfidf-search/internal/persistence"
)

// loadSnapshot fills the model from the configured snapshot path.
func (e *Engine) loadSnapshot() error {
	path := e.settings.Index.SnapshotPath
	err := persistence.LoadGob(path, e.model)
	switch {
	case err == nil:
		docs, terms := e.model.Stats()
		e.log.Info("snapshot loaded", "path", path, "documents", docs, "terms", terms)
		return nil
	case stderrors.Is(err, os.ErrNotExist):
		e.log.Info("no snapshot found, starting with an empty index", "path", path)
		return nil
	default:
		return errors.NewSnapshotError(path, err)
	}
}

// Persist writes the model snapshot to the configured path.
func (e *Engine) Persist() error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	path := e.settings.Index.SnapshotPath
	err := persistence.SaveGob(path, e.model)
	e.metrics.ObserveSnapshot(err)
	if err != nil {
		e.log.Error("failed to persist snapshot", "path", path, "error", err)
		return fmt.Errorf("failed to persist index snapshot: %w", err)
	}
	e.log.Debug("snapshot persisted", "path", path)
	return nil
}
