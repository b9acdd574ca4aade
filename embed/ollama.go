package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaConfig configures the Ollama embedder
type OllamaConfig struct {
	// BaseURL defaults to http://localhost:11434
	BaseURL string

	// Model defaults to nomic-embed-text
	Model string

	HTTPClient *http.Client
}

// Ollama embeds through a local or remote Ollama server
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates an Ollama embedder
func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	return &Ollama{client: ollama.NewClient(u, hc), model: cfg.Model}, nil
}

// Model returns the model name
func (o *Ollama) Model() string {
	return o.model
}

// Embed implements Embedder
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.Embed(ctx, &ollama.EmbedRequest{
		Model: o.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("ollama embed: no embeddings returned")
	}
	return resp.Embeddings[0], nil
}
