package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "claimsight.db"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.OpenAIBaseURL == "" {
		cfg.AI.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.OpenAIEmbedModel == "" {
		cfg.AI.OpenAIEmbedModel = "text-embedding-3-small"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.AI.GeminiEmbedModel == "" {
		cfg.AI.GeminiEmbedModel = "text-embedding-004"
	}
	if cfg.AI.OllamaBaseURL == "" {
		cfg.AI.OllamaBaseURL = "http://localhost:11434/v1"
	}
	if cfg.AI.OllamaModel == "" {
		cfg.AI.OllamaModel = "llama3.2"
	}
	if cfg.AI.OllamaEmbedModel == "" {
		cfg.AI.OllamaEmbedModel = "nomic-embed-text"
	}
	if cfg.AI.EmbeddingDimensions == 0 {
		cfg.AI.EmbeddingDimensions = 768
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 2000
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.1
	}
	if cfg.Search.SimilarityThreshold == 0 {
		cfg.Search.SimilarityThreshold = 0.7
	}
	if cfg.Search.KeywordThreshold == 0 {
		cfg.Search.KeywordThreshold = 0.2
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 10
	}
	if cfg.Search.ChunkSize == 0 {
		cfg.Search.ChunkSize = 200
	}
	if cfg.Search.ChunkOverlap == 0 {
		cfg.Search.ChunkOverlap = 40
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".odt", ".rtf", ".xlsx"}
	}
}
