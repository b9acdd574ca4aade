// Package config loads the mosaic YAML configuration file.
//
// A file only needs the keys it changes; everything else keeps the value from
// Default. Durations are written as strings such as "10s" or "250ms".
//
//	log:
//	  level: debug
//	embed:
//	  provider: ollama
//	  model: nomic-embed-text
//	  dimension: 768
//	  retry:
//	    max_attempts: 3
//	pipeline:
//	  region_workers: 16
//	index:
//	  path: ./mosaic-index
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/mosaic/embed"
	"github.com/tsawler/mosaic/index"
	"github.com/tsawler/mosaic/pipeline"
)

// Environment variables consulted for the embedding API key
const (
	EnvAPIKey       = "MOSAIC_EMBED_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Config is the complete mosaic configuration
type Config struct {
	Log      LogConfig       `yaml:"log"`
	Embed    embed.Config    `yaml:"embed"`
	Pipeline pipeline.Config `yaml:"pipeline"`
	Index    index.Config    `yaml:"index"`
}

// LogConfig configures the logger built by internal/logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "json"},
		Embed:    embed.DefaultConfig(),
		Pipeline: pipeline.DefaultConfig(),
		Index:    index.DefaultConfig(),
	}
}

// Load reads the YAML file at path over Default, applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// Parse decodes YAML data into cfg. Unknown keys are rejected and an empty
// document leaves cfg unchanged.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv fills the embedding API key from the environment.
// MOSAIC_EMBED_API_KEY always wins; the provider specific variable is used
// only when the file left the key empty.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.Embed.APIKey = v
		return
	}
	if c.Embed.APIKey != "" {
		return
	}
	var name string
	switch c.Embed.Provider {
	case embed.ProviderOpenAI:
		name = EnvOpenAIAPIKey
	case embed.ProviderGemini:
		name = EnvGeminiAPIKey
	default:
		return
	}
	if v, ok := lookup(name); ok {
		c.Embed.APIKey = v
	}
}

// Validate checks that values are usable
func (c *Config) Validate() error {
	if c.Pipeline.RegionWorkers <= 0 {
		return fmt.Errorf("pipeline.region_workers must be > 0")
	}
	if c.Pipeline.DocumentWorkers <= 0 {
		return fmt.Errorf("pipeline.document_workers must be > 0")
	}
	if c.Pipeline.Splitter.MaxChars <= 0 {
		return fmt.Errorf("pipeline.splitter.max_chars must be > 0")
	}
	if !embed.KnownProvider(c.Embed.Provider) {
		return fmt.Errorf("unsupported embed.provider %q", c.Embed.Provider)
	}
	if c.Embed.Dimension <= 0 {
		return fmt.Errorf("embed.dimension must be > 0")
	}
	if c.Embed.Retry.MaxAttempts < 1 {
		return fmt.Errorf("embed.retry.max_attempts must be >= 1")
	}
	if c.Embed.Timeout < 0 {
		return fmt.Errorf("embed.timeout must not be negative")
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log.format %q (use json or text)", c.Log.Format)
	}
	return nil
}
