package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/llm"
)

// Catalog is the course-metadata capability OutlineTool needs.
// *knowledge.Store satisfies it.
type Catalog interface {
	// ResolveCourseName maps a fuzzy course name to a canonical title.
	ResolveCourseName(ctx context.Context, name string) (string, error)
	// Outline returns the catalog entry for a canonical title.
	Outline(ctx context.Context, title string) (*knowledge.Course, error)
}

// OutlineTool returns a course's structure: title, link and the full
// numbered lesson list. Like SearchTool, it reports failures in-band.
type OutlineTool struct {
	catalog Catalog
	sources []Source
}

// NewOutlineTool creates an OutlineTool backed by the given catalog.
func NewOutlineTool(catalog Catalog) *OutlineTool {
	return &OutlineTool{catalog: catalog}
}

// Definition describes the tool to the model.
func (t *OutlineTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "get_course_outline",
		Description: "Get the complete outline of a course including title, link, and all lessons",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

// Execute resolves the course name and renders its outline.
func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) string {
	courseName, ok := stringArg(args, "course_name")
	if !ok || courseName == "" {
		return "Outline error: course_name is required"
	}

	title, err := t.catalog.ResolveCourseName(ctx, courseName)
	if err != nil {
		return fmt.Sprintf("No course found matching '%s'", courseName)
	}

	course, err := t.catalog.Outline(ctx, title)
	if err != nil {
		return "Outline error: " + err.Error()
	}

	t.sources = append(t.sources, Source{Text: course.Title, Link: course.Link})

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", course.Link)
	}
	fmt.Fprintf(&b, "Lessons (%d):", len(course.Lessons))
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&b, "\n%d. %s", lesson.Number, lesson.Title)
	}
	return b.String()
}

// lastSources returns the sources recorded by the most recent calls.
func (t *OutlineTool) lastSources() []Source {
	return t.sources
}

// resetSources clears recorded sources.
func (t *OutlineTool) resetSources() {
	t.sources = nil
}
