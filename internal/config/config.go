// Package config provides configuration loading for the claimsight server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
	Search  SearchConfig  `yaml:"search"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds persistence paths.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// AIConfig holds provider preference and model identifiers. API keys are
// never read from the YAML file; they come from the environment
// (OPENAI_API_KEY, GEMINI_API_KEY), optionally via a .env file.
type AIConfig struct {
	// Provider is the preferred backend: "openai", "gemini", or "ollama".
	// The deterministic stand-in always terminates the preference list.
	Provider            string  `yaml:"provider"`
	OpenAIBaseURL       string  `yaml:"openai_base_url"`
	OpenAIModel         string  `yaml:"openai_model"`
	OpenAIEmbedModel    string  `yaml:"openai_embedding_model"`
	GeminiModel         string  `yaml:"gemini_model"`
	GeminiEmbedModel    string  `yaml:"gemini_embedding_model"`
	OllamaBaseURL       string  `yaml:"ollama_base_url"`
	OllamaModel         string  `yaml:"ollama_model"`
	OllamaEmbedModel    string  `yaml:"ollama_embedding_model"`
	EmbeddingDimensions int     `yaml:"embedding_dimensions"`
	MaxTokens           int     `yaml:"max_tokens"`
	Temperature         float64 `yaml:"temperature"`

	// Populated from the environment, never from YAML.
	OpenAIAPIKey string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
}

// SearchConfig holds retrieval and chunking settings.
type SearchConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	KeywordThreshold    float64 `yaml:"keyword_threshold"`
	MaxResults          int     `yaml:"max_results"`
	ChunkSize           int     `yaml:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap"`
}

// WatchConfig holds directory watch settings for auto-ingestion.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, merges environment
// overrides, expands paths, and applies defaults. A missing file is not an
// error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env supplements the process environment without overriding it.
	_ = godotenv.Load()
	applyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
	return &cfg, nil
}

// applyEnv merges environment variables over file values. Secrets are
// environment-only.
func applyEnv(cfg *Config) {
	cfg.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if v := os.Getenv("CLAIMSIGHT_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("CLAIMSIGHT_LLM_MODEL"); v != "" {
		cfg.AI.OpenAIModel = v
		cfg.AI.GeminiModel = v
		cfg.AI.OllamaModel = v
	}
	if v := os.Getenv("CLAIMSIGHT_EMBEDDING_MODEL"); v != "" {
		cfg.AI.OpenAIEmbedModel = v
		cfg.AI.GeminiEmbedModel = v
		cfg.AI.OllamaEmbedModel = v
	}
	if v := os.Getenv("CLAIMSIGHT_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("CLAIMSIGHT_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxResults = n
		}
	}
	if v := os.Getenv("CLAIMSIGHT_DATABASE_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("CLAIMSIGHT_DEBUG"); v != "" {
		cfg.Debug = strings.EqualFold(v, "true") || v == "1"
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
