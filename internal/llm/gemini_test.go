package llm

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

func TestContentsFromMessages(t *testing.T) {
	messages := []Message{
		UserText("What is in lesson 2?"),
		{Role: RoleModel, Blocks: []Block{
			ToolCallBlock(ToolCall{ID: "c1", Name: "search_course_content", Args: map[string]any{"query": "lesson 2"}}),
		}},
		ToolResults([]ToolResult{
			{CallID: "c1", Name: "search_course_content", Content: "[Intro - Lesson 2]\ncontent"},
		}),
	}

	contents, err := contentsFromMessages(messages)
	if err != nil {
		t.Fatalf("contentsFromMessages() error: %v", err)
	}
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}

	if contents[0].Role != string(genai.RoleUser) || contents[0].Parts[0].Text != "What is in lesson 2?" {
		t.Errorf("first content = %+v, want user text", contents[0])
	}

	fc := contents[1].Parts[0].FunctionCall
	if contents[1].Role != string(genai.RoleModel) || fc == nil {
		t.Fatalf("second content should be a model function call, got %+v", contents[1])
	}
	if fc.ID != "c1" || fc.Name != "search_course_content" {
		t.Errorf("function call = %+v", fc)
	}

	fr := contents[2].Parts[0].FunctionResponse
	if fr == nil || fr.ID != "c1" {
		t.Fatalf("third content should carry the matching function response, got %+v", contents[2])
	}
	if fr.Response["output"] != "[Intro - Lesson 2]\ncontent" {
		t.Errorf("function response output = %v", fr.Response["output"])
	}
}

func TestContentsFromMessages_UnknownRole(t *testing.T) {
	_, err := contentsFromMessages([]Message{{Role: "system", Blocks: []Block{TextBlock("x")}}})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestResponseFromCandidates_Text(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Python is a language."}}},
		}},
	}

	out, err := responseFromCandidates(resp)
	if err != nil {
		t.Fatalf("responseFromCandidates() error: %v", err)
	}
	if out.StopReason != StopEndTurn {
		t.Errorf("stop reason = %q, want end_turn", out.StopReason)
	}
	if out.FirstText() != "Python is a language." {
		t.Errorf("text = %q", out.FirstText())
	}
}

func TestResponseFromCandidates_ToolUse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{Name: "get_course_outline", Args: map[string]any{"course_name": "MCP"}}},
			}},
		}},
	}

	out, err := responseFromCandidates(resp)
	if err != nil {
		t.Fatalf("responseFromCandidates() error: %v", err)
	}
	if out.StopReason != StopToolUse {
		t.Errorf("stop reason = %q, want tool_use", out.StopReason)
	}

	calls := out.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	// Gemini often omits call IDs; the client must synthesize one
	if calls[0].ID == "" {
		t.Error("call ID should be synthesized when the API omits it")
	}
}

func TestResponseFromCandidates_Empty(t *testing.T) {
	if _, err := responseFromCandidates(&genai.GenerateContentResponse{}); err == nil {
		t.Fatal("expected error for response without candidates")
	}
	if _, err := responseFromCandidates(nil); err == nil {
		t.Fatal("expected error for nil response")
	}
}

func TestDeclarationsFromDefinitions(t *testing.T) {
	defs := []ToolDefinition{{
		Name:        "search_course_content",
		Description: "Search course materials",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":         {Type: "string", Description: "What to search for"},
				"lesson_number": {Type: "integer", Description: "Lesson filter"},
			},
			Required: []string{"query"},
		},
	}}

	decls, err := declarationsFromDefinitions(defs)
	if err != nil {
		t.Fatalf("declarationsFromDefinitions() error: %v", err)
	}
	if len(decls) != 1 {
		t.Fatalf("got %d declarations, want 1", len(decls))
	}

	d := decls[0]
	if d.Name != "search_course_content" {
		t.Errorf("name = %q", d.Name)
	}
	if d.Parameters.Type != genai.TypeObject {
		t.Errorf("parameters type = %v, want object", d.Parameters.Type)
	}
	if d.Parameters.Properties["query"].Type != genai.TypeString {
		t.Errorf("query type = %v, want string", d.Parameters.Properties["query"].Type)
	}
	if d.Parameters.Properties["lesson_number"].Type != genai.TypeInteger {
		t.Errorf("lesson_number type = %v, want integer", d.Parameters.Properties["lesson_number"].Type)
	}
	if len(d.Parameters.Required) != 1 || d.Parameters.Required[0] != "query" {
		t.Errorf("required = %v, want [query]", d.Parameters.Required)
	}
}

func TestGenaiSchema_UnsupportedType(t *testing.T) {
	_, err := genaiSchema(&jsonschema.Schema{Type: "null"})
	if err == nil {
		t.Fatal("expected error for unsupported schema type")
	}
}
