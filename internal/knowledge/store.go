// Package knowledge implements the course catalog and content index on
// PostgreSQL + pgvector.
//
// Two tables back the store: courses (catalog metadata plus a title
// embedding used for fuzzy course-name resolution) and course_chunks
// (embedded content spans). Semantic search is cosine-distance
// nearest-neighbor over the chunk embeddings with optional course and
// lesson filters.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/coursewise/coursewise/internal/llm"
)

// ErrEmptyCatalog indicates no courses are indexed.
var ErrEmptyCatalog = errors.New("course catalog is empty")

// searchTimeout bounds vector search queries so a slow index cannot block
// the agent round indefinitely.
const searchTimeout = 10 * time.Second

// Store manages the course catalog and content index.
// It handles embedding generation and vector similarity search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool         *pgxpool.Pool
	embedder     llm.Embedder
	defaultLimit int
	logger       *slog.Logger
}

// New creates a Store.
//
// defaultLimit is the result limit applied when a search does not carry an
// explicit WithLimit option. A defaultLimit of 0 is accepted here but makes
// every default-limit search fail with a descriptive error; see Search.
func New(pool *pgxpool.Pool, embedder llm.Embedder, defaultLimit int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:         pool,
		embedder:     embedder,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// DefaultLimit returns the configured default search limit.
func (s *Store) DefaultLimit() int {
	return s.defaultLimit
}

// AddCourse upserts a course catalog entry.
// The course title is embedded for fuzzy name resolution.
func (s *Store) AddCourse(ctx context.Context, course Course) error {
	if course.Title == "" {
		return fmt.Errorf("course title is required")
	}

	vec, err := s.embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embedding course title %q: %w", course.Title, err)
	}

	lessons, err := json.Marshal(course.Lessons)
	if err != nil {
		return fmt.Errorf("marshaling lessons for %q: %w", course.Title, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO courses (title, link, instructor, lessons, title_embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (title) DO UPDATE
		SET link = EXCLUDED.link,
		    instructor = EXCLUDED.instructor,
		    lessons = EXCLUDED.lessons,
		    title_embedding = EXCLUDED.title_embedding`,
		course.Title, course.Link, course.Instructor, lessons, vec)
	if err != nil {
		return fmt.Errorf("upserting course %q: %w", course.Title, err)
	}

	s.logger.Debug("added course", "title", course.Title, "lessons", len(course.Lessons))
	return nil
}

// AddChunks embeds and inserts content chunks in one batch.
// Chunks for an already-indexed (course_title, chunk_index) pair are replaced.
func (s *Store) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		vec, err := s.embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %d of %q: %w", i, chunk.CourseTitle, err)
		}

		var lesson *int
		if chunk.LessonNumber >= 0 {
			n := chunk.LessonNumber
			lesson = &n
		}

		batch.Queue(`
			INSERT INTO course_chunks (id, course_title, lesson_number, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (course_title, chunk_index) DO UPDATE
			SET lesson_number = EXCLUDED.lesson_number,
			    content = EXCLUDED.content,
			    embedding = EXCLUDED.embedding`,
			uuid.NewString(), chunk.CourseTitle, lesson, chunk.ChunkIndex, chunk.Content, vec)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			s.logger.Warn("closing chunk batch", "error", err)
		}
	}()

	for i := range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	s.logger.Debug("added chunks", "count", len(chunks), "course", chunks[0].CourseTitle)
	return nil
}

// Search performs semantic search over the content index.
//
// Limit resolution: an explicit WithLimit always wins; otherwise the store's
// configured default is used. A resolved limit of zero or less is rejected
// with a descriptive error rather than silently returning nothing; the
// error text is surfaced to the model as a tool result, so it must explain
// the misconfiguration.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Hit, error) {
	cfg := buildSearchConfig(s.defaultLimit, opts)
	if cfg.limit <= 0 {
		return nil, fmt.Errorf("number of requested results %d, cannot be negative, or zero", cfg.limit)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec, err := s.embed(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var lesson *int
	if cfg.lessonSet {
		n := cfg.lessonNumber
		lesson = &n
	}

	rows, err := s.pool.Query(queryCtx, `
		SELECT c.content,
		       c.course_title,
		       COALESCE(c.lesson_number, -1),
		       COALESCE((
		           SELECT l->>'lesson_link'
		           FROM jsonb_array_elements(k.lessons) AS l
		           WHERE (l->>'lesson_number')::int = c.lesson_number
		           LIMIT 1
		       ), ''),
		       1 - (c.embedding <=> $1) AS similarity
		FROM course_chunks c
		JOIN courses k ON k.title = c.course_title
		WHERE ($2 = '' OR c.course_title = $2)
		  AND ($3::int IS NULL OR c.lesson_number = $3)
		ORDER BY c.embedding <=> $1
		LIMIT $4`,
		vec, cfg.courseTitle, lesson, cfg.limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Content, &h.CourseTitle, &h.LessonNumber, &h.LessonLink, &h.Similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	return hits, nil
}

// ResolveCourseName resolves a fuzzy course name to the closest canonical
// course title using nearest-neighbor search over title embeddings.
//
// API guarantee: resolution always returns the single closest title, even
// for names that match nothing well; it fails only when the catalog is
// empty (ErrEmptyCatalog). Callers that need strict matching must compare
// the result themselves.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	vec, err := s.embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embedding course name: %w", err)
	}

	var title string
	err = s.pool.QueryRow(ctx, `
		SELECT title FROM courses
		ORDER BY title_embedding <=> $1
		LIMIT 1`, vec).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("resolving %q: %w", name, ErrEmptyCatalog)
	}
	if err != nil {
		return "", fmt.Errorf("resolving course name: %w", err)
	}

	return title, nil
}

// Outline returns the catalog entry for a canonical course title.
func (s *Store) Outline(ctx context.Context, title string) (*Course, error) {
	var (
		course  = Course{Title: title}
		lessons []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT link, instructor, lessons FROM courses WHERE title = $1`,
		title).Scan(&course.Link, &course.Instructor, &lessons)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("course %q: %w", title, ErrEmptyCatalog)
	}
	if err != nil {
		return nil, fmt.Errorf("loading outline for %q: %w", title, err)
	}

	if err := json.Unmarshal(lessons, &course.Lessons); err != nil {
		return nil, fmt.Errorf("parsing lessons for %q: %w", title, err)
	}

	return &course, nil
}

// ListCourseTitles returns all course titles ordered alphabetically.
func (s *Store) ListCourseTitles(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT title FROM courses ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning course title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("course rows: %w", err)
	}

	return titles, nil
}

// CountCourses returns the number of indexed courses.
func (s *Store) CountCourses(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return count, nil
}

// DeleteCourse removes a course and all its chunks (CASCADE).
func (s *Store) DeleteCourse(ctx context.Context, title string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE title = $1`, title); err != nil {
		return fmt.Errorf("deleting course %q: %w", title, err)
	}
	s.logger.Debug("deleted course", "title", title)
	return nil
}

// embed generates one embedding and wraps it for pgvector.
func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	values, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(values) != VectorDimension {
		return pgvector.Vector{}, fmt.Errorf("embedding dimension %d, want %d", len(values), VectorDimension)
	}
	return pgvector.NewVector(values), nil
}
