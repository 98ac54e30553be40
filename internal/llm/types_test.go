package llm

import (
	"testing"
)

func TestResponse_FirstText(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "single text block",
			resp: Response{Blocks: []Block{TextBlock("hello")}},
			want: "hello",
		},
		{
			name: "tool call before text",
			resp: Response{Blocks: []Block{
				ToolCallBlock(ToolCall{ID: "c1", Name: "search_course_content"}),
				TextBlock("after the call"),
			}},
			want: "after the call",
		},
		{
			name: "no text blocks",
			resp: Response{Blocks: []Block{
				ToolCallBlock(ToolCall{ID: "c1", Name: "get_course_outline"}),
			}},
			want: "",
		},
		{
			name: "empty response",
			resp: Response{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.FirstText(); got != tt.want {
				t.Errorf("FirstText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponse_ToolCalls_PreservesOrder(t *testing.T) {
	resp := Response{Blocks: []Block{
		ToolCallBlock(ToolCall{ID: "c1", Name: "get_course_outline"}),
		TextBlock("thinking"),
		ToolCallBlock(ToolCall{ID: "c2", Name: "search_course_content"}),
	}}

	calls := resp.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("ToolCalls() returned %d calls, want 2", len(calls))
	}
	if calls[0].ID != "c1" || calls[1].ID != "c2" {
		t.Errorf("ToolCalls() order = [%s %s], want [c1 c2]", calls[0].ID, calls[1].ID)
	}
}

func TestToolResults_OneBlockPerResult(t *testing.T) {
	msg := ToolResults([]ToolResult{
		{CallID: "c1", Name: "search_course_content", Content: "result one"},
		{CallID: "c2", Name: "get_course_outline", Content: "result two"},
	})

	if msg.Role != RoleUser {
		t.Errorf("role = %q, want user", msg.Role)
	}
	if len(msg.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(msg.Blocks))
	}
	if msg.Blocks[0].ToolResult.CallID != "c1" || msg.Blocks[1].ToolResult.CallID != "c2" {
		t.Error("tool results must keep call order")
	}
}

func TestUserText(t *testing.T) {
	msg := UserText("What is Python?")
	if msg.Role != RoleUser {
		t.Errorf("role = %q, want user", msg.Role)
	}
	if len(msg.Blocks) != 1 || msg.Blocks[0].Text != "What is Python?" {
		t.Errorf("unexpected blocks: %+v", msg.Blocks)
	}
}
