package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// fakeCatalog is a scripted Catalog for tests.
type fakeCatalog struct {
	resolved   string
	resolveErr error
	course     *knowledge.Course
	outlineErr error
}

func (f *fakeCatalog) ResolveCourseName(_ context.Context, name string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	if f.resolved != "" {
		return f.resolved, nil
	}
	return name, nil
}

func (f *fakeCatalog) Outline(_ context.Context, _ string) (*knowledge.Course, error) {
	return f.course, f.outlineErr
}

func TestOutlineToolRendersCourse(t *testing.T) {
	catalog := &fakeCatalog{
		resolved: "MCP: Build Rich-Context AI Apps",
		course: &knowledge.Course{
			Title: "MCP: Build Rich-Context AI Apps",
			Link:  "https://example.com/mcp",
			Lessons: []knowledge.Lesson{
				{Number: 0, Title: "Introduction"},
				{Number: 1, Title: "Why MCP"},
				{Number: 2, Title: "Architecture"},
			},
		},
	}
	tool := NewOutlineTool(catalog)

	got := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})

	want := "Course: MCP: Build Rich-Context AI Apps\n" +
		"Course Link: https://example.com/mcp\n" +
		"Lessons (3):\n" +
		"0. Introduction\n" +
		"1. Why MCP\n" +
		"2. Architecture"
	if got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}

	sources := tool.lastSources()
	if len(sources) != 1 {
		t.Fatalf("lastSources() returned %d sources, want 1", len(sources))
	}
	if sources[0].Text != "MCP: Build Rich-Context AI Apps" || sources[0].Link != "https://example.com/mcp" {
		t.Errorf("source = %+v", sources[0])
	}
}

func TestOutlineToolCourseWithoutLink(t *testing.T) {
	catalog := &fakeCatalog{
		course: &knowledge.Course{
			Title:   "Untitled Course",
			Lessons: []knowledge.Lesson{{Number: 1, Title: "Only Lesson"}},
		},
	}
	tool := NewOutlineTool(catalog)

	got := tool.Execute(context.Background(), map[string]any{"course_name": "Untitled Course"})

	want := "Course: Untitled Course\nLessons (1):\n1. Only Lesson"
	if got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}
}

func TestOutlineToolUnresolvedCourse(t *testing.T) {
	catalog := &fakeCatalog{resolveErr: knowledge.ErrEmptyCatalog}
	tool := NewOutlineTool(catalog)

	got := tool.Execute(context.Background(), map[string]any{"course_name": "Nothing"})

	if want := "No course found matching 'Nothing'"; got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}
}

func TestOutlineToolCatalogError(t *testing.T) {
	catalog := &fakeCatalog{outlineErr: errors.New("connection refused")}
	tool := NewOutlineTool(catalog)

	got := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})

	if want := "Outline error: connection refused"; got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}
}

func TestOutlineToolMissingCourseName(t *testing.T) {
	tool := NewOutlineTool(&fakeCatalog{})

	if got := tool.Execute(context.Background(), map[string]any{}); got != "Outline error: course_name is required" {
		t.Errorf("Execute() = %q", got)
	}
}
