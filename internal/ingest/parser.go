// Package ingest turns course documents into catalog entries and content
// chunks ready for embedding.
//
// A course document is plain text with a metadata header followed by
// lesson sections:
//
//	Course Title: MCP: Build Rich-Context AI Apps
//	Course Link: https://example.com/courses/mcp
//	Course Instructor: Some Instructor
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/courses/mcp/lesson/0
//	<lesson text...>
//
//	Lesson 1: ...
//
// Header lines may appear in any order; only the title is mandatory. Text
// before the first lesson marker is indexed without a lesson number.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// ErrMissingTitle indicates a document without a Course Title header.
var ErrMissingTitle = errors.New("document has no course title")

// lessonHeading matches section markers like "Lesson 3: Tool Calling".
var lessonHeading = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Document is a parsed course document: catalog metadata plus the raw text
// of each section, ready for chunking.
type Document struct {
	Course   knowledge.Course
	Sections []Section
}

// Section is one contiguous span of course text. LessonNumber is -1 for
// preamble text that belongs to no lesson.
type Section struct {
	LessonNumber int
	Text         string
}

// Parse reads one course document.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}

	var (
		current   = Section{LessonNumber: -1}
		body      strings.Builder
		inHeader  = true
		sawLesson bool
	)

	flush := func() {
		text := strings.TrimSpace(body.String())
		body.Reset()
		if text == "" {
			return
		}
		current.Text = text
		doc.Sections = append(doc.Sections, current)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := lessonHeading.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("parsing lesson number in %q: %w", line, err)
			}
			current = Section{LessonNumber: number}
			doc.Course.Lessons = append(doc.Course.Lessons, knowledge.Lesson{
				Number: number,
				Title:  strings.TrimSpace(m[2]),
			})
			inHeader = false
			sawLesson = true
			continue
		}

		if sawLesson {
			if link, ok := headerValue(line, "Lesson Link:"); ok && lessonLinkPending(doc, current.LessonNumber, &body) {
				doc.Course.Lessons[len(doc.Course.Lessons)-1].Link = link
				continue
			}
		}

		if inHeader {
			switch {
			case matchHeader(line, "Course Title:", &doc.Course.Title),
				matchHeader(line, "Course Link:", &doc.Course.Link),
				matchHeader(line, "Course Instructor:", &doc.Course.Instructor):
				continue
			case strings.TrimSpace(line) == "":
				continue
			default:
				// First non-header line starts the preamble.
				inHeader = false
			}
		}

		body.WriteString(line)
		body.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	flush()

	if doc.Course.Title == "" {
		return nil, ErrMissingTitle
	}
	return doc, nil
}

// matchHeader extracts "<prefix> value" lines into dst.
func matchHeader(line, prefix string, dst *string) bool {
	v, ok := headerValue(line, prefix)
	if ok {
		*dst = v
	}
	return ok
}

func headerValue(line, prefix string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
}

// lessonLinkPending reports whether a Lesson Link line still belongs to the
// current lesson heading, i.e. no body text has accumulated yet.
func lessonLinkPending(doc *Document, lessonNumber int, body *strings.Builder) bool {
	if len(doc.Course.Lessons) == 0 {
		return false
	}
	last := doc.Course.Lessons[len(doc.Course.Lessons)-1]
	return last.Number == lessonNumber && strings.TrimSpace(body.String()) == ""
}
