// Package rag composes the retrieval pipeline behind a single query
// façade: session history in, agentic generation with tools, answer plus
// source citations out.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coursewise/coursewise/internal/agent"
	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/tools"
)

// Generator produces answers. *agent.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, query, history string, runner agent.ToolRunner) (string, error)
}

// ContentStore is the knowledge surface the system needs: retrieval for
// the tools and catalog counts for analytics. *knowledge.Store satisfies it.
type ContentStore interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Hit, error)
	ResolveCourseName(ctx context.Context, name string) (string, error)
	Outline(ctx context.Context, title string) (*knowledge.Course, error)
	ListCourseTitles(ctx context.Context) ([]string, error)
	CountCourses(ctx context.Context) (int, error)
}

// Sessions is the conversation-history surface. *session.Manager
// satisfies it.
type Sessions interface {
	Create() string
	History(id string) string
	AddExchange(id, query, answer string)
	Clear(id string)
}

// Answer is the result of one query.
type Answer struct {
	Text      string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

// Analytics summarizes the indexed catalog.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// System wires the generator, knowledge store and session manager into the
// query pipeline the API and CLI consume.
type System struct {
	generator Generator
	store     ContentStore
	sessions  Sessions
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New creates a System.
func New(generator Generator, store ContentStore, sessions Sessions, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		generator: generator,
		store:     store,
		sessions:  sessions,
		logger:    logger,
		tracer:    otel.Tracer("coursewise/rag"),
	}
}

// Query answers one user question.
//
// An empty sessionID allocates a new session; the effective ID is returned
// in the Answer so the caller can continue the conversation. The tool
// registry is built fresh for every query, which keeps recorded citations
// strictly per-query even under concurrent requests. The exchange is added
// to history only after a successful answer.
func (s *System) Query(ctx context.Context, query, sessionID string) (*Answer, error) {
	ctx, span := s.tracer.Start(ctx, "rag.Query",
		trace.WithAttributes(attribute.Int("query.length", len(query))))
	defer span.End()

	if sessionID == "" {
		sessionID = s.sessions.Create()
	}

	registry := tools.NewRegistry(s.logger)
	if err := registry.Register(tools.NewSearchTool(s.store)); err != nil {
		return nil, fmt.Errorf("registering search tool: %w", err)
	}
	if err := registry.Register(tools.NewOutlineTool(s.store)); err != nil {
		return nil, fmt.Errorf("registering outline tool: %w", err)
	}

	history := s.sessions.History(sessionID)

	answer, err := s.generator.Generate(ctx, query, history, registry)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	sources := registry.LastSources()
	registry.ResetSources()

	s.sessions.AddExchange(sessionID, query, answer)

	s.logger.Info("query answered",
		"session_id", sessionID,
		"sources", len(sources),
		"answer_length", len(answer))

	return &Answer{Text: answer, Sources: sources, SessionID: sessionID}, nil
}

// CourseAnalytics reports what the catalog currently holds.
func (s *System) CourseAnalytics(ctx context.Context) (*Analytics, error) {
	titles, err := s.store.ListCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing course titles: %w", err)
	}
	count, err := s.store.CountCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting courses: %w", err)
	}
	return &Analytics{TotalCourses: count, CourseTitles: titles}, nil
}

// ClearSession drops a session's conversation history.
func (s *System) ClearSession(sessionID string) {
	s.sessions.Clear(sessionID)
}
