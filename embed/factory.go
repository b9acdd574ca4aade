package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Provider names
const (
	ProviderHashing = "hashing"
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
)

// KnownProvider reports whether name is a supported provider
func KnownProvider(name string) bool {
	switch name {
	case ProviderHashing, ProviderOllama, ProviderOpenAI, ProviderGemini:
		return true
	}
	return false
}

// Config selects and tunes an embedding provider
type Config struct {
	Provider  string `yaml:"provider" json:"provider"`
	Model     string `yaml:"model" json:"model"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	APIKey    string `yaml:"api_key" json:"-"`
	Dimension int    `yaml:"dimension" json:"dimension"`

	// Timeout applies to each provider call
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`

	Retry RetryPolicy `yaml:"retry" json:"retry"`
}

// DefaultConfig returns the offline hashing configuration
func DefaultConfig() Config {
	return Config{
		Provider:          ProviderHashing,
		Dimension:         384,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             10,
		Retry:             DefaultRetryPolicy(),
	}
}

// NewFromConfig builds the configured provider and wraps it in a Client
func NewFromConfig(ctx context.Context, cfg Config, logger logrus.FieldLogger) (*Client, error) {
	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case ProviderHashing, "":
		e = NewHashing(cfg.Dimension)
	case ProviderOllama:
		e, err = NewOllama(OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model})
	case ProviderOpenAI:
		e, err = NewOpenAI(OpenAIConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimension,
		})
	case ProviderGemini:
		e, err = NewGemini(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewClient(e, cfg.Dimension,
		WithTimeout(cfg.Timeout),
		WithRetryPolicy(cfg.Retry),
		WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		WithLogger(logger),
	), nil
}
