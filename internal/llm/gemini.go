package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/coursewise/coursewise/internal/config"
)

// Gemini implements Client on top of the Gemini API via google.golang.org/genai.
//
// Gemini is safe for concurrent use by multiple goroutines; the underlying
// genai client is stateless per request.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      *slog.Logger
}

// NewGemini creates a Gemini completion client.
// The API key is read from GEMINI_API_KEY by config.APIKey().
func NewGemini(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens), // #nosec G115 -- bounded by config validation
		logger:      logger,
	}, nil
}

// Complete issues one blocking completion call.
func (g *Gemini) Complete(ctx context.Context, req Request) (*Response, error) {
	contents, err := contentsFromMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	if len(req.Tools) > 0 {
		decls, err := declarationsFromDefinitions(req.Tools)
		if err != nil {
			return nil, err
		}
		genCfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}

		mode := genai.FunctionCallingConfigModeAuto
		if req.ToolChoice == ToolChoiceNone {
			mode = genai.FunctionCallingConfigModeNone
		}
		genCfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	out, err := responseFromCandidates(resp)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("completion finished",
		"stop_reason", out.StopReason,
		"blocks", len(out.Blocks))
	return out, nil
}

// contentsFromMessages converts neutral messages to the genai wire shape.
func contentsFromMessages(messages []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	for i, msg := range messages {
		var role genai.Role
		switch msg.Role {
		case RoleUser:
			role = genai.RoleUser
		case RoleModel:
			role = genai.RoleModel
		default:
			return nil, fmt.Errorf("message %d: unknown role %q", i, msg.Role)
		}

		parts := make([]*genai.Part, 0, len(msg.Blocks))
		for _, b := range msg.Blocks {
			switch {
			case b.ToolCall != nil:
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   b.ToolCall.ID,
						Name: b.ToolCall.Name,
						Args: b.ToolCall.Args,
					},
				})
			case b.ToolResult != nil:
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       b.ToolResult.CallID,
						Name:     b.ToolResult.Name,
						Response: map[string]any{"output": b.ToolResult.Content},
					},
				})
			default:
				parts = append(parts, genai.NewPartFromText(b.Text))
			}
		}

		contents = append(contents, &genai.Content{Role: string(role), Parts: parts})
	}

	return contents, nil
}

// responseFromCandidates converts a genai response to the neutral shape.
// Gemini signals tool use through FunctionCall parts rather than a stop
// reason; the resulting StopReason is derived from part inspection. Call IDs
// are synthesized when the API omits them so that tool results can always be
// matched to their originating calls.
func responseFromCandidates(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("model returned no candidates")
	}

	out := &Response{StopReason: StopEndTurn}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			out.Blocks = append(out.Blocks, ToolCallBlock(ToolCall{
				ID:   id,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			}))
			out.StopReason = StopToolUse
		case part.Text != "":
			out.Blocks = append(out.Blocks, TextBlock(part.Text))
		}
	}

	return out, nil
}
