package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/coursewise/coursewise/internal/config"
)

// EmbeddingDimension is the output dimensionality requested from the
// embedder. gemini-embedding-001 supports truncation via Matryoshka
// Representation Learning; this value must match the pgvector column
// dimension in the knowledge schema.
const EmbeddingDimension = 768

// GeminiEmbedder implements Embedder using the Gemini embedding API.
// Safe for concurrent use.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder for the configured model.
func NewGeminiEmbedder(ctx context.Context, cfg *config.Config) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiEmbedder{client: client, model: cfg.EmbedderModel}, nil
}

// Embed generates one embedding vector for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(EmbeddingDimension)),
		})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	return resp.Embeddings[0].Values, nil
}
