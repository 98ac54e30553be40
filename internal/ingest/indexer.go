package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// lockFileName is created inside the docs directory while indexing so two
// indexer processes cannot interleave writes for the same corpus.
const lockFileName = ".coursewise.lock"

// Store is the persistence surface the indexer writes to.
// *knowledge.Store satisfies it.
type Store interface {
	ListCourseTitles(ctx context.Context) ([]string, error)
	AddCourse(ctx context.Context, course knowledge.Course) error
	AddChunks(ctx context.Context, chunks []knowledge.Chunk) error
}

// Stats summarizes one indexing run.
type Stats struct {
	Courses int
	Chunks  int
	Skipped int
}

// Indexer loads course documents from disk into the knowledge store.
type Indexer struct {
	store     Store
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// New creates an Indexer with the given chunking parameters.
func New(store Store, chunkSize, overlap int, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		store:     store,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger,
	}
}

// IndexDirectory indexes every .txt and .md document under dir.
//
// Courses whose title is already in the store are skipped, so re-running
// over the same directory is cheap and idempotent. A file lock in the
// directory serializes concurrent indexer runs; a held lock fails fast
// rather than blocking.
func (ix *Indexer) IndexDirectory(ctx context.Context, dir string) (Stats, error) {
	var stats Stats

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return stats, fmt.Errorf("acquiring index lock: %w", err)
	}
	if !locked {
		return stats, fmt.Errorf("another indexer holds the lock for %s", dir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			ix.logger.Warn("releasing index lock", "error", err)
		}
	}()

	existing, err := ix.store.ListCourseTitles(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing indexed courses: %w", err)
	}
	indexed := make(map[string]bool, len(existing))
	for _, title := range existing {
		indexed[title] = true
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCourseFile(path) {
			return nil
		}

		doc, err := ix.parseFile(path)
		if err != nil {
			// A malformed document should not abort the whole run.
			ix.logger.Warn("skipping document", "path", path, "error", err)
			return nil
		}

		if indexed[doc.Course.Title] {
			ix.logger.Debug("course already indexed", "title", doc.Course.Title)
			stats.Skipped++
			return nil
		}

		added, err := ix.indexDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}

		indexed[doc.Course.Title] = true
		stats.Courses++
		stats.Chunks += added
		return nil
	})
	if err != nil {
		return stats, err
	}

	ix.logger.Info("indexing complete",
		"dir", dir,
		"courses", stats.Courses,
		"chunks", stats.Chunks,
		"skipped", stats.Skipped)
	return stats, nil
}

// indexDocument writes one parsed document: catalog entry first, then all
// content chunks.
func (ix *Indexer) indexDocument(ctx context.Context, doc *Document) (int, error) {
	if err := ix.store.AddCourse(ctx, doc.Course); err != nil {
		return 0, err
	}

	var chunks []knowledge.Chunk
	index := 0
	for _, section := range doc.Sections {
		for _, text := range Chunks(section.Text, ix.chunkSize, ix.overlap) {
			chunks = append(chunks, knowledge.Chunk{
				Content:      text,
				CourseTitle:  doc.Course.Title,
				LessonNumber: section.LessonNumber,
				ChunkIndex:   index,
			})
			index++
		}
	}

	if err := ix.store.AddChunks(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (ix *Indexer) parseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func isCourseFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}
