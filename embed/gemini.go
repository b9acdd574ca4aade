package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiConfig configures the Gemini embedder
type GeminiConfig struct {
	APIKey string

	// Model defaults to text-embedding-004
	Model string
}

// Gemini embeds through the Google Generative AI API
type Gemini struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	name   string
}

// NewGemini creates a Gemini embedder. Close releases the client.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini embedder: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  client.EmbeddingModel(cfg.Model),
		name:   cfg.Model,
	}, nil
}

// Model returns the model name
func (g *Gemini) Model() string {
	return g.name
}

// Embed implements Embedder
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := g.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("gemini embed: no embeddings returned")
	}
	return res.Embedding.Values, nil
}

// Close closes the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}
