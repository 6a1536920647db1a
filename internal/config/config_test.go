package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("provider = %s", cfg.AI.Provider)
	}
	if cfg.AI.EmbeddingDimensions != 768 {
		t.Errorf("dimensions = %d", cfg.AI.EmbeddingDimensions)
	}
	if cfg.Search.SimilarityThreshold != 0.7 || cfg.Search.KeywordThreshold != 0.2 {
		t.Errorf("thresholds = %v / %v", cfg.Search.SimilarityThreshold, cfg.Search.KeywordThreshold)
	}
	if cfg.Search.ChunkSize != 200 || cfg.Search.ChunkOverlap != 40 {
		t.Errorf("chunking = %d / %d", cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)
	}
	if len(cfg.Watch.Extensions) == 0 {
		t.Error("watch extensions default missing")
	}
}

func TestLoadFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/claims.db
ai:
  provider: ollama
  embedding_dimensions: 384
search:
  similarity_threshold: 0.6
  max_results: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not loaded")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("provider = %s", cfg.AI.Provider)
	}
	if cfg.AI.EmbeddingDimensions != 384 {
		t.Errorf("dimensions = %d", cfg.AI.EmbeddingDimensions)
	}
	if cfg.Search.SimilarityThreshold != 0.6 {
		t.Errorf("similarity threshold = %v", cfg.Search.SimilarityThreshold)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("max results = %d", cfg.Search.MaxResults)
	}
	// ./-relative database paths resolve against the config directory.
	want := filepath.Join(dir, "data/claims.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	// Unset fields still get defaults.
	if cfg.AI.OllamaBaseURL != "http://localhost:11434/v1" {
		t.Errorf("ollama base url = %s", cfg.AI.OllamaBaseURL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLAIMSIGHT_PROVIDER", "openai")
	t.Setenv("CLAIMSIGHT_SIMILARITY_THRESHOLD", "0.55")
	t.Setenv("CLAIMSIGHT_MAX_RESULTS", "3")
	t.Setenv("CLAIMSIGHT_DEBUG", "true")
	t.Setenv("OPENAI_API_KEY", "test-openai-key")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != "openai" {
		t.Errorf("provider = %s", cfg.AI.Provider)
	}
	if cfg.Search.SimilarityThreshold != 0.55 {
		t.Errorf("similarity threshold = %v", cfg.Search.SimilarityThreshold)
	}
	if cfg.Search.MaxResults != 3 {
		t.Errorf("max results = %d", cfg.Search.MaxResults)
	}
	if !cfg.Debug {
		t.Error("debug not set from env")
	}
	if cfg.AI.OpenAIAPIKey != "test-openai-key" {
		t.Error("OpenAI key not read from env")
	}
	if cfg.AI.GeminiAPIKey != "test-gemini-key" {
		t.Error("Gemini key not read from env")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("/abs/path.db", "/etc/claimsight"); got != "/abs/path.db" {
		t.Errorf("absolute path changed: %s", got)
	}
	if got := expandPath("", "/etc/claimsight"); got != "" {
		t.Errorf("empty path changed: %s", got)
	}
	if got := expandPath("./local.db", "/etc/claimsight"); got != "/etc/claimsight/local.db" {
		t.Errorf("config-relative path = %s", got)
	}
}
