// Package agent implements the tool-calling orchestration loop.
//
// A query is answered in at most maxToolRounds model calls with tools
// advertised, plus one final forced call without tools when the model is
// still asking for tools after the last round. Message history grows in
// strict alternation: the seed user message, then for every tool round one
// assistant message (the model's content, appended verbatim) and one user
// message carrying the tool results. The loop owns that history; nothing
// outside the package mutates it.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coursewise/coursewise/internal/llm"
)

// ToolRunner is the tool surface the generator drives.
// *tools.Registry satisfies it.
type ToolRunner interface {
	// Definitions returns the tool definitions to advertise to the model.
	Definitions() []llm.ToolDefinition

	// Dispatch executes one tool call, encoding failures in the returned
	// string.
	Dispatch(ctx context.Context, name string, args map[string]any) string
}

// Generator runs the agentic answer loop against an llm.Client.
type Generator struct {
	client        llm.Client
	maxToolRounds int
	logger        *slog.Logger
	tracer        trace.Tracer
}

// New creates a Generator. maxToolRounds bounds the number of model calls
// that advertise tools; values below 1 are clamped to 1.
func New(client llm.Client, maxToolRounds int, logger *slog.Logger) *Generator {
	if maxToolRounds < 1 {
		maxToolRounds = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		client:        client,
		maxToolRounds: maxToolRounds,
		logger:        logger,
		tracer:        otel.Tracer("coursewise/agent"),
	}
}

// Generate answers a query, optionally using tools.
//
// history is pre-rendered conversation context; when non-empty it is
// appended to the system prompt, not injected into the message list.
// runner may be nil, in which case the model is called once without tools.
//
// The returned string is the first text block of the final response, or ""
// when the final response carries no text. Model transport errors abort the
// whole query; tool failures do not, they flow back to the model as result
// text.
func (g *Generator) Generate(ctx context.Context, query, history string, runner ToolRunner) (string, error) {
	system := systemPrompt
	if history != "" {
		system += historyHeading + history
	}

	var defs []llm.ToolDefinition
	if runner != nil {
		defs = runner.Definitions()
	}

	messages := []llm.Message{llm.UserText(query)}

	var resp *llm.Response
	for round := 0; round < g.maxToolRounds; round++ {
		req := llm.Request{
			System:   system,
			Messages: messages,
		}
		if len(defs) > 0 {
			req.Tools = defs
			req.ToolChoice = llm.ToolChoiceAuto
		}

		var err error
		resp, err = g.complete(ctx, req, round+1)
		if err != nil {
			return "", fmt.Errorf("model call (round %d): %w", round+1, err)
		}

		if resp.StopReason != llm.StopToolUse || runner == nil {
			break
		}

		// The assistant content goes into history verbatim, tool-call
		// blocks included, so the follow-up results can reference them.
		messages = append(messages, resp.Message())

		calls := resp.ToolCalls()
		results := make([]llm.ToolResult, 0, len(calls))
		for _, call := range calls {
			g.logger.Debug("executing tool", "round", round+1, "tool", call.Name)
			content := runner.Dispatch(ctx, call.Name, call.Args)
			results = append(results, llm.ToolResult{CallID: call.ID, Name: call.Name, Content: content})
		}
		if len(results) > 0 {
			messages = append(messages, llm.ToolResults(results))
		}
	}

	// Rounds exhausted with the model still requesting tools: force a text
	// answer by calling once more without advertising any tools.
	if resp.StopReason == llm.StopToolUse {
		resp2, err := g.complete(ctx, llm.Request{
			System:   system,
			Messages: messages,
		}, g.maxToolRounds+1)
		if err != nil {
			return "", fmt.Errorf("final model call: %w", err)
		}
		resp = resp2
	}

	return resp.FirstText(), nil
}

// complete runs one model call inside a trace span.
func (g *Generator) complete(ctx context.Context, req llm.Request, round int) (*llm.Response, error) {
	ctx, span := g.tracer.Start(ctx, "agent.ModelRound",
		trace.WithAttributes(
			attribute.Int("round", round),
			attribute.Int("tools.count", len(req.Tools)),
		))
	defer span.End()
	return g.client.Complete(ctx, req)
}
