package ingest

import (
	"errors"
	"strings"
	"testing"
)

const sampleDocument = `Course Title: MCP: Build Rich-Context AI Apps
Course Link: https://example.com/mcp
Course Instructor: Some Instructor

Lesson 0: Introduction
Lesson Link: https://example.com/mcp/lesson/0
Welcome to the course. This lesson introduces the protocol.

Lesson 1: Why MCP
Lesson Link: https://example.com/mcp/lesson/1
MCP standardizes tool access. It replaces bespoke integrations.
`

func TestParseFullDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	course := doc.Course
	if course.Title != "MCP: Build Rich-Context AI Apps" {
		t.Errorf("Title = %q", course.Title)
	}
	if course.Link != "https://example.com/mcp" {
		t.Errorf("Link = %q", course.Link)
	}
	if course.Instructor != "Some Instructor" {
		t.Errorf("Instructor = %q", course.Instructor)
	}

	if len(course.Lessons) != 2 {
		t.Fatalf("parsed %d lessons, want 2", len(course.Lessons))
	}
	if course.Lessons[0].Number != 0 || course.Lessons[0].Title != "Introduction" {
		t.Errorf("lesson 0 = %+v", course.Lessons[0])
	}
	if course.Lessons[1].Link != "https://example.com/mcp/lesson/1" {
		t.Errorf("lesson 1 link = %q", course.Lessons[1].Link)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("parsed %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].LessonNumber != 0 {
		t.Errorf("first section lesson = %d", doc.Sections[0].LessonNumber)
	}
	if !strings.Contains(doc.Sections[1].Text, "standardizes tool access") {
		t.Errorf("second section text = %q", doc.Sections[1].Text)
	}
	// Lesson Link lines never leak into the body.
	if strings.Contains(doc.Sections[0].Text, "Lesson Link") {
		t.Errorf("lesson link leaked into section text: %q", doc.Sections[0].Text)
	}
}

func TestParsePreambleWithoutLesson(t *testing.T) {
	input := "Course Title: Minimal\n\nSome introduction text before any lesson.\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("parsed %d sections, want 1", len(doc.Sections))
	}
	if doc.Sections[0].LessonNumber != -1 {
		t.Errorf("preamble lesson number = %d, want -1", doc.Sections[0].LessonNumber)
	}
}

func TestParseHeaderOrderIndependent(t *testing.T) {
	input := "Course Instructor: X\nCourse Title: Reordered\nCourse Link: https://example.com\n\nLesson 1: Only\nBody.\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Course.Title != "Reordered" || doc.Course.Instructor != "X" {
		t.Errorf("course = %+v", doc.Course)
	}
}

func TestParseMissingTitle(t *testing.T) {
	_, err := Parse(strings.NewReader("Lesson 1: Untitled\nBody.\n"))
	if !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("Parse() error = %v, want ErrMissingTitle", err)
	}
}

func TestParseLessonHeadingInsideBodyText(t *testing.T) {
	// An indented or inline mention is a heading only when it starts the
	// trimmed line; a mid-sentence mention must not open a section.
	input := "Course Title: T\n\nLesson 1: Real\nThe phrase Lesson 2: fake appears mid-sentence here.\n"
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Course.Lessons) != 1 {
		t.Errorf("parsed %d lessons, want 1", len(doc.Course.Lessons))
	}
}
