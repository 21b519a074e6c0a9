// Package indexing walks a corpus directory and keeps an index.Model in sync with it.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-tfidf-search/index"
	"github.com/gcbaptista/go-tfidf-search/internal/extract"
	"github.com/gcbaptista/go-tfidf-search/internal/logger"
	"github.com/gcbaptista/go-tfidf-search/internal/tokenizer"
)

// Options configures a corpus walk.
type Options struct {
	Extensions   []string // accepted file extensions; empty accepts every file
	SkipDirs     []string // directory names never descended into
	Workers      int      // files read and tokenized concurrently
	MaxFileBytes int64    // files above this size are skipped; <= 0 disables the limit
	Tokenizer    tokenizer.Options
}

// Stats summarizes one IndexRoot pass.
type Stats struct {
	Indexed  int           `json:"indexed"`
	Skipped  int           `json:"skipped"`
	Removed  int           `json:"removed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// Changed reports whether the pass modified the model.
func (s Stats) Changed() bool {
	return s.Indexed > 0 || s.Removed > 0
}

// ProgressFunc receives the number of files processed so far out of total.
// It may be called from several goroutines at once.
type ProgressFunc func(done, total int)

// Service is the corpus driver for one model.
type Service struct {
	model      *index.Model
	opts       Options
	extensions map[string]struct{}
	skipDirs   map[string]struct{}
	log        *slog.Logger
}

// candidate is a file found by the walk.
type candidate struct {
	id      string
	path    string
	modTime time.Time
}

// NewService creates an indexing Service.
func NewService(model *index.Model, opts Options) (*Service, error) {
	if model == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	s := &Service{
		model:      model,
		opts:       opts,
		extensions: make(map[string]struct{}, len(opts.Extensions)),
		skipDirs:   make(map[string]struct{}, len(opts.SkipDirs)),
		log:        logger.WithComponent("indexer"),
	}
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[ext] = struct{}{}
	}
	for _, dir := range opts.SkipDirs {
		s.skipDirs[dir] = struct{}{}
	}
	return s, nil
}

// IndexRoot brings the model in line with the files under root.
//
// New files are indexed, files newer than their index entry are reindexed and
// the rest are skipped. Indexed documents under root that the walk no longer
// finds are removed. Document ids are file paths as produced by walking root.
// A cancelled ctx stops the pass between files; pruning only runs after a
// complete walk.
func (s *Service) IndexRoot(ctx context.Context, root string, progress ProgressFunc) (Stats, error) {
	start := time.Now()
	root = filepath.Clean(root)

	found, err := s.walk(ctx, root)
	if err != nil {
		return Stats{Duration: time.Since(start)}, err
	}

	var stats Stats
	seen := make(map[string]struct{}, len(found))
	pending := make([]candidate, 0, len(found))
	for _, c := range found {
		seen[c.id] = struct{}{}
		if !s.model.Contains(c.id) || s.model.RequiresReindexing(c.id, c.modTime) {
			pending = append(pending, c)
			continue
		}
		stats.Skipped++
	}

	indexed, err := s.indexFiles(ctx, pending, progress)
	stats.Indexed = indexed.Indexed
	stats.Skipped += indexed.Skipped
	stats.Failed = indexed.Failed
	stats.Removed = indexed.Removed
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	stats.Removed += s.prune(root, seen)
	stats.Duration = time.Since(start)

	s.log.Info("corpus indexed",
		"root", root,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"removed", stats.Removed,
		"failed", stats.Failed,
		"duration", stats.Duration)
	return stats, nil
}

// IndexFile (re)indexes a single file under id, regardless of its timestamp.
func (s *Service) IndexFile(id, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	_, err = s.indexOne(candidate{id: id, path: path, modTime: info.ModTime()})
	return err
}

func (s *Service) walk(ctx context.Context, root string) ([]candidate, error) {
	var found []candidate
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.log.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := s.skipDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !s.accepts(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.log.Warn("skipping file without metadata", "path", path, "error", err)
			return nil
		}
		found = append(found, candidate{id: path, path: path, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return found, nil
}

func (s *Service) accepts(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// indexFiles reads and tokenizes pending files on a bounded worker pool.
// Removed counts stale records dropped because their file could no longer be indexed.
func (s *Service) indexFiles(ctx context.Context, pending []candidate, progress ProgressFunc) (Stats, error) {
	var nIndexed, nSkipped, nFailed, nRemoved, done atomic.Int64
	total := len(pending)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for _, c := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			dropped, err := s.indexOne(c)
			if dropped {
				nRemoved.Add(1)
			}
			switch {
			case err == nil:
				nIndexed.Add(1)
			case errors.Is(err, extract.ErrTooLarge), errors.Is(err, extract.ErrBinaryContent):
				s.log.Debug("skipping file", "path", c.path, "reason", err)
				nSkipped.Add(1)
			default:
				s.log.Warn("failed to index file", "path", c.path, "error", err)
				nFailed.Add(1)
			}

			if progress != nil {
				progress(int(done.Add(1)), total)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return Stats{
		Indexed: int(nIndexed.Load()),
		Skipped: int(nSkipped.Load()),
		Failed:  int(nFailed.Load()),
		Removed: int(nRemoved.Load()),
	}, err
}

// indexOne indexes c. When the file can no longer be read, any previous
// record for c.id is dropped so stale terms stop matching; dropped reports that.
func (s *Service) indexOne(c candidate) (dropped bool, err error) {
	content, err := extract.ReadFile(c.path, s.opts.MaxFileBytes)
	if err != nil {
		if s.model.RemoveDocument(c.id) {
			s.log.Debug("dropped stale record", "id", c.id, "reason", err)
			dropped = true
		}
		return dropped, err
	}
	s.model.AddDocument(c.id, c.modTime, tokenizer.Terms(content, s.opts.Tokenizer))
	s.log.Debug("indexed file", "id", c.id, "runes", len(content))
	return false, nil
}

// prune removes documents under root that were not seen by the walk.
func (s *Service) prune(root string, seen map[string]struct{}) int {
	removed := 0
	for _, id := range s.model.DocumentIDs() {
		if _, ok := seen[id]; ok || !underRoot(root, id) {
			continue
		}
		if s.model.RemoveDocument(id) {
			s.log.Debug("removed vanished file", "id", id)
			removed++
		}
	}
	return removed
}

func underRoot(root, id string) bool {
	rel, err := filepath.Rel(root, id)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
