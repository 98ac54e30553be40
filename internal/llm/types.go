// Package llm provides provider-neutral language model types and the Gemini
// client implementation used by the agent loop.
//
// The types model conversations as ordered content blocks (text, tool call,
// tool result) so that the agent can append a model response verbatim and
// feed tool results back in, matched by call ID. The Client interface is
// deliberately small: one blocking Complete call per round.
package llm

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is the querying side: the user's question and tool results.
	RoleUser Role = "user"

	// RoleModel is the model side: answers and tool-call requests.
	RoleModel Role = "model"
)

// StopReason describes why the model stopped generating.
type StopReason string

const (
	// StopEndTurn means the model produced a final answer.
	StopEndTurn StopReason = "end_turn"

	// StopToolUse means the model requested one or more tool calls and is
	// waiting for their results.
	StopToolUse StopReason = "tool_use"
)

// ToolChoice is the tool-choice policy for a completion request.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto ToolChoice = "auto"

	// ToolChoiceNone disables tool calling, forcing a plain-text answer.
	ToolChoiceNone ToolChoice = "none"
)

// ToolDefinition advertises a callable tool to the model.
// Immutable once registered; InputSchema must describe a JSON object.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// ToolCall is a tool invocation requested by the model.
// ID is opaque and is supplied (or synthesized) by the client; it ties the
// call to its result in the following message.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult carries one tool execution result back to the model,
// tagged with the originating call ID.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

// Block is one content block inside a message. Exactly one field is set.
type Block struct {
	Text       string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// TextBlock creates a text content block.
func TextBlock(text string) Block {
	return Block{Text: text}
}

// ToolCallBlock creates a tool-call content block.
func ToolCallBlock(call ToolCall) Block {
	return Block{ToolCall: &call}
}

// ToolResultBlock creates a tool-result content block.
func ToolResultBlock(result ToolResult) Block {
	return Block{ToolResult: &result}
}

// Message is one conversation turn: a role and an ordered block sequence.
// Within a query the message list is append-only; blocks are never mutated.
type Message struct {
	Role   Role
	Blocks []Block
}

// UserText builds a plain-text user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Blocks: []Block{TextBlock(text)}}
}

// ToolResults builds the user message that answers a round of tool calls.
// Results must be in the same order as the calls were issued.
func ToolResults(results []ToolResult) Message {
	blocks := make([]Block, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, ToolResultBlock(r))
	}
	return Message{Role: RoleUser, Blocks: blocks}
}

// Request is one completion request.
type Request struct {
	// System is the system instruction for this query.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []Message

	// Tools advertises callable tools. Empty disables tool calling.
	Tools []ToolDefinition

	// ToolChoice is the tool-choice policy. Ignored when Tools is empty.
	ToolChoice ToolChoice
}

// Response is one model response.
type Response struct {
	// Blocks is the model's content in generation order.
	Blocks []Block

	// StopReason is StopToolUse when Blocks contains tool calls.
	StopReason StopReason
}

// FirstText returns the text of the first text block, or "" if none exists.
func (r *Response) FirstText() string {
	for _, b := range r.Blocks {
		if b.ToolCall == nil && b.ToolResult == nil && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

// ToolCalls returns the tool-call blocks in the order they appear.
func (r *Response) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, b := range r.Blocks {
		if b.ToolCall != nil {
			calls = append(calls, *b.ToolCall)
		}
	}
	return calls
}

// Message converts the response into a model-role message so the agent can
// append it to the conversation verbatim.
func (r *Response) Message() Message {
	return Message{Role: RoleModel, Blocks: r.Blocks}
}

// Client is the completion interface consumed by the agent loop.
//
// Implementations must support the automatic tool-choice policy and the
// no-tools mode (empty Request.Tools). Errors returned here are fatal for
// the whole query; tool-level failures never surface through Complete.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Embedder generates a vector embedding for a single text.
// Consumed by the knowledge store for both indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
