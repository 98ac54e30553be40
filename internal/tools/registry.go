package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursewise/coursewise/internal/llm"
)

// ErrDuplicateTool indicates a tool name is already registered.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Registry holds named tools and dispatches calls by name.
//
// Registration rejects duplicate names (first registration wins); this is a
// documented choice over last-write-wins so a wiring mistake fails loudly at
// startup instead of silently shadowing a tool.
//
// Concurrency: the registry is built once per query by the query façade and
// never shared across queries, so no locking is needed. The underlying
// knowledge store handles concurrent access.
type Registry struct {
	order  []string
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool keyed by its definition name.
// Returns ErrDuplicateTool if the name is already taken.
func (r *Registry) Register(t Tool) error {
	name := t.Definition().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Definitions returns all registered tool definitions in registration order,
// used to advertise capabilities to the model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch looks up a tool by name and executes it.
//
// An unknown tool name is reported in-band as a result string, never as an
// error: the model chose the name, so the failure must flow back into the
// conversation for the model to recover from.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.tools[name]
	if !ok {
		r.logger.Warn("model requested unknown tool", "tool", name)
		return fmt.Sprintf("Tool '%s' not found", name)
	}

	result := t.Execute(ctx, args)
	r.logger.Debug("tool executed", "tool", name, "result_length", len(result))
	return result
}

// LastSources returns the citations recorded by tools since the last reset,
// in tool registration order.
func (r *Registry) LastSources() []Source {
	var sources []Source
	for _, name := range r.order {
		if sp, ok := r.tools[name].(sourceProvider); ok {
			sources = append(sources, sp.lastSources()...)
		}
	}
	return sources
}

// ResetSources clears recorded citations on all tools.
func (r *Registry) ResetSources() {
	for _, t := range r.tools {
		if sp, ok := t.(sourceProvider); ok {
			sp.resetSources()
		}
	}
}
