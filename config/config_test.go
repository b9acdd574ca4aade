package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tsawler/mosaic/embed"
)

func noEnv(string) (string, bool) { return "", false }

func TestParse_OverlaysDefaults(t *testing.T) {
	data := []byte(`
log:
  level: debug
embed:
  provider: ollama
  model: nomic-embed-text
  dimension: 768
  timeout: 30s
  retry:
    max_attempts: 2
    base_delay: 100ms
pipeline:
  region_workers: 16
  splitter:
    max_chars: 800
index:
  path: /tmp/mosaic
`)
	cfg := Default()
	if err := Parse(data, cfg); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Embed.Provider != embed.ProviderOllama || cfg.Embed.Dimension != 768 {
		t.Errorf("Embed = %+v", cfg.Embed)
	}
	if cfg.Embed.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Embed.Timeout)
	}
	if cfg.Embed.Retry.MaxAttempts != 2 || cfg.Embed.Retry.BaseDelay != 100*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Embed.Retry)
	}
	// untouched keys keep their defaults
	if cfg.Embed.Retry.MaxDelay != embed.DefaultRetryPolicy().MaxDelay {
		t.Errorf("MaxDelay = %v, want default", cfg.Embed.Retry.MaxDelay)
	}
	if cfg.Pipeline.RegionWorkers != 16 || cfg.Pipeline.DocumentWorkers != 4 {
		t.Errorf("Pipeline workers = %d/%d", cfg.Pipeline.RegionWorkers, cfg.Pipeline.DocumentWorkers)
	}
	if cfg.Pipeline.Splitter.MaxChars != 800 {
		t.Errorf("MaxChars = %d, want 800", cfg.Pipeline.Splitter.MaxChars)
	}
	if cfg.Pipeline.Extract.MinImageSide != 16 {
		t.Errorf("MinImageSide = %d, want 16", cfg.Pipeline.Extract.MinImageSide)
	}
	if cfg.Index.Path != "/tmp/mosaic" || cfg.Index.Collection != "chunks" {
		t.Errorf("Index = %+v", cfg.Index)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "embed:\n  provder: openai\n"},
		{"bad duration", "embed:\n  timeout: soon\n"},
		{"not yaml", "embed: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Parse([]byte(tt.data), Default()); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg := Default()
	if err := Parse(nil, cfg); err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Embed.Provider != embed.ProviderHashing {
		t.Errorf("Provider = %q, want hashing", cfg.Embed.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"region workers", func(c *Config) { c.Pipeline.RegionWorkers = 0 }, "region_workers"},
		{"document workers", func(c *Config) { c.Pipeline.DocumentWorkers = -1 }, "document_workers"},
		{"provider", func(c *Config) { c.Embed.Provider = "cohere" }, "provider"},
		{"dimension", func(c *Config) { c.Embed.Dimension = 0 }, "dimension"},
		{"retry", func(c *Config) { c.Embed.Retry.MaxAttempts = 0 }, "max_attempts"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := func(vars map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		}
	}

	tests := []struct {
		name     string
		provider string
		fileKey  string
		vars     map[string]string
		want     string
	}{
		{"mosaic key wins", embed.ProviderOpenAI, "from-file", map[string]string{EnvAPIKey: "m", EnvOpenAIAPIKey: "o"}, "m"},
		{"openai fallback", embed.ProviderOpenAI, "", map[string]string{EnvOpenAIAPIKey: "o", EnvGeminiAPIKey: "g"}, "o"},
		{"gemini fallback", embed.ProviderGemini, "", map[string]string{EnvOpenAIAPIKey: "o", EnvGeminiAPIKey: "g"}, "g"},
		{"file key kept", embed.ProviderGemini, "from-file", map[string]string{EnvGeminiAPIKey: "g"}, "from-file"},
		{"hashing ignores provider keys", embed.ProviderHashing, "", map[string]string{EnvOpenAIAPIKey: "o"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Embed.Provider = tt.provider
			cfg.Embed.APIKey = tt.fileKey
			cfg.ApplyEnv(env(tt.vars))
			if cfg.Embed.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", cfg.Embed.APIKey, tt.want)
			}
		})
	}

	cfg := Default()
	cfg.ApplyEnv(noEnv)
	if cfg.Embed.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.Embed.APIKey)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Pipeline.RegionWorkers != 8 {
		t.Errorf("RegionWorkers = %d, want 8", cfg.Pipeline.RegionWorkers)
	}

	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  document_workers: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "document_workers") {
		t.Errorf("Load() error = %v, want document_workers validation error", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
