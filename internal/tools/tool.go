// Package tools provides the tool registry and the retrieval tools the
// model can call while answering a query.
//
// Design principles:
//   - Tools expose a machine-readable definition (name, description, JSON
//     Schema input) and a single Execute operation returning a string.
//   - Tool failures are data, not control flow: a failing tool encodes the
//     failure as a descriptive string result so it can be round-tripped
//     back into the conversation for the model to react to. Execute never
//     returns a Go error.
//   - Source citations are a side channel: successful content searches
//     record them on the tool, the registry aggregates them, and the query
//     façade surfaces them to the caller independent of the model's answer.
package tools

import (
	"context"

	"github.com/coursewise/coursewise/internal/llm"
)

// Tool is a named capability the model can invoke.
type Tool interface {
	// Definition returns the tool's machine-readable definition.
	// Immutable once the tool is registered.
	Definition() llm.ToolDefinition

	// Execute runs the tool. Failures are encoded in the returned string;
	// Execute must not panic and has no error return.
	Execute(ctx context.Context, args map[string]any) string
}

// Source is one citation recorded by a successful content search.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// sourceProvider is implemented by tools that record citations.
type sourceProvider interface {
	lastSources() []Source
	resetSources()
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

// intArg extracts an optional integer argument.
// JSON decoding yields float64 for numbers, so both forms are accepted.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
