package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// fakeStore records what the indexer writes.
type fakeStore struct {
	titles  []string
	courses []knowledge.Course
	chunks  []knowledge.Chunk
}

func (f *fakeStore) ListCourseTitles(context.Context) ([]string, error) {
	return f.titles, nil
}

func (f *fakeStore) AddCourse(_ context.Context, course knowledge.Course) error {
	f.courses = append(f.courses, course)
	return nil
}

func (f *fakeStore) AddChunks(_ context.Context, chunks []knowledge.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "mcp.txt", sampleDocument)
	writeDoc(t, dir, "notes.log", "not a course file")

	store := &fakeStore{}
	ix := New(store, 800, 100, nil)

	stats, err := ix.IndexDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory() error: %v", err)
	}

	if stats.Courses != 1 {
		t.Errorf("stats.Courses = %d, want 1", stats.Courses)
	}
	if len(store.courses) != 1 || store.courses[0].Title != "MCP: Build Rich-Context AI Apps" {
		t.Fatalf("stored courses = %+v", store.courses)
	}
	if len(store.chunks) == 0 {
		t.Fatal("no chunks stored")
	}
	if stats.Chunks != len(store.chunks) {
		t.Errorf("stats.Chunks = %d, stored %d", stats.Chunks, len(store.chunks))
	}

	// Chunk indices are contiguous per course.
	for i, c := range store.chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.CourseTitle != "MCP: Build Rich-Context AI Apps" {
			t.Errorf("chunk %d course = %q", i, c.CourseTitle)
		}
	}
}

func TestIndexDirectorySkipsExisting(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "mcp.txt", sampleDocument)

	store := &fakeStore{titles: []string{"MCP: Build Rich-Context AI Apps"}}
	ix := New(store, 800, 100, nil)

	stats, err := ix.IndexDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory() error: %v", err)
	}

	if stats.Courses != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 0 indexed / 1 skipped", stats)
	}
	if len(store.courses) != 0 {
		t.Errorf("existing course was re-indexed: %+v", store.courses)
	}
}

func TestIndexDirectorySkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.txt", "no title header here\n")
	writeDoc(t, dir, "good.txt", sampleDocument)

	store := &fakeStore{}
	ix := New(store, 800, 100, nil)

	stats, err := ix.IndexDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory() error: %v", err)
	}
	if stats.Courses != 1 {
		t.Errorf("stats.Courses = %d, want 1 (malformed doc skipped)", stats.Courses)
	}
}

func TestIndexDirectoryDuplicateTitlesInRun(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", sampleDocument)
	writeDoc(t, dir, "b.txt", sampleDocument)

	store := &fakeStore{}
	ix := New(store, 800, 100, nil)

	stats, err := ix.IndexDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory() error: %v", err)
	}
	if stats.Courses != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want the second copy skipped", stats)
	}
}

func TestIndexDirectoryLessonNumbersFlowThrough(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "mcp.txt", sampleDocument)

	store := &fakeStore{}
	ix := New(store, 800, 100, nil)
	if _, err := ix.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	seen := map[int]bool{}
	for _, c := range store.chunks {
		seen[c.LessonNumber] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("lesson numbers in chunks = %v, want lessons 0 and 1", seen)
	}
}
