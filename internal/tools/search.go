package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/llm"
)

// Searcher is the content-search capability SearchTool needs.
// *knowledge.Store satisfies it.
type Searcher interface {
	// Search runs semantic search over indexed course content.
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Hit, error)
	// ResolveCourseName maps a fuzzy course name to a canonical title.
	ResolveCourseName(ctx context.Context, name string) (string, error)
}

// SearchTool exposes semantic course-content search to the model.
//
// All failure modes are reported in-band as result text so the model can
// recover or explain: a fuzzy course name that resolves to nothing, a
// store error, and an empty result set each produce a distinct message.
//
// The tool records one source per returned chunk; the conversational
// layer collects them after the agent loop finishes. A SearchTool is
// built fresh for every query, so the recorded sources never leak across
// requests.
type SearchTool struct {
	searcher Searcher
	sources  []Source
}

// NewSearchTool creates a SearchTool backed by the given searcher.
func NewSearchTool(searcher Searcher) *SearchTool {
	return &SearchTool{searcher: searcher}
}

// Definition describes the tool to the model.
//
// Only the query is required. The optional course_name accepts partial
// matches ("MCP" for a course whose title merely contains it), and
// lesson_number narrows the search to one lesson.
func (t *SearchTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs the search and formats the hits for the model.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) string {
	query, ok := stringArg(args, "query")
	if !ok || query == "" {
		return "Search error: query is required"
	}

	courseName, hasCourse := stringArg(args, "course_name")
	lessonNumber, hasLesson := intArg(args, "lesson_number")

	var opts []knowledge.SearchOption
	courseTitle := ""
	if hasCourse && courseName != "" {
		resolved, err := t.searcher.ResolveCourseName(ctx, courseName)
		if err != nil {
			return fmt.Sprintf("No course found matching '%s'", courseName)
		}
		courseTitle = resolved
		opts = append(opts, knowledge.WithCourse(resolved))
	}
	if hasLesson {
		opts = append(opts, knowledge.WithLesson(lessonNumber))
	}

	hits, err := t.searcher.Search(ctx, query, opts...)
	if err != nil {
		return "Search error: " + err.Error()
	}
	if len(hits) == 0 {
		return emptyResultMessage(courseTitle, hasLesson, lessonNumber)
	}

	return t.format(hits)
}

// emptyResultMessage names the filters that were in effect so the model
// can relax them on a retry.
func emptyResultMessage(courseTitle string, hasLesson bool, lessonNumber int) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if courseTitle != "" {
		fmt.Fprintf(&b, " in course '%s'", courseTitle)
	}
	if hasLesson {
		fmt.Fprintf(&b, " in lesson %d", lessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

// format renders hits as headed blocks and records one source per hit.
func (t *SearchTool) format(hits []knowledge.Hit) string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		header := hit.CourseTitle
		if hit.LessonNumber >= 0 {
			header = fmt.Sprintf("%s - Lesson %d", hit.CourseTitle, hit.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, hit.Content))
		t.sources = append(t.sources, Source{Text: header, Link: hit.LessonLink})
	}
	return strings.Join(blocks, "\n\n")
}

// lastSources returns the sources recorded by the most recent searches.
func (t *SearchTool) lastSources() []Source {
	return t.sources
}

// resetSources clears recorded sources.
func (t *SearchTool) resetSources() {
	t.sources = nil
}
