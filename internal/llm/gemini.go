package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiConfig configures the Gemini REST client.
type GeminiConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
}

// GeminiClient speaks the Gemini generateContent and embedContent REST API.
type GeminiClient struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGeminiClient creates a client with config defaults applied.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GeminiClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name identifies the provider.
func (c *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generateContentRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateText calls generateContent. Gemini has no separate system role at
// this API level, so the system prompt is prepended to the user prompt.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	full := prompt
	if systemPrompt != "" {
		full = systemPrompt + "\n\n" + prompt
	}
	var body generateContentRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: full}}}}
	body.GenerationConfig.MaxOutputTokens = c.cfg.MaxTokens
	body.GenerationConfig.Temperature = c.cfg.Temperature

	var out generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", c.cfg.Model)
	if err := c.post(ctx, path, body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generateContent returned no candidates")
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

type embedContentRequest struct {
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType,omitempty"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GenerateEmbeddings calls embedContent once per text.
func (c *GeminiClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	path := fmt.Sprintf("/models/%s:embedContent", c.cfg.EmbeddingModel)
	for i, t := range texts {
		body := embedContentRequest{
			Content:  geminiContent{Parts: []geminiPart{{Text: t}}},
			TaskType: "RETRIEVAL_DOCUMENT",
		}
		var out embedContentResponse
		if err := c.post(ctx, path, body, &out); err != nil {
			return nil, err
		}
		if len(out.Embedding.Values) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vectors[i] = out.Embedding.Values
	}
	return vectors, nil
}

// Available probes the backend with a short embedding call.
func (c *GeminiClient) Available(ctx context.Context) bool {
	if c.cfg.APIKey == "" {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.GenerateEmbeddings(probeCtx, []string{"ping"})
	return err == nil
}

func (c *GeminiClient) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	url := c.cfg.BaseURL + path + "?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %s: %s", path, resp.Status, strings.TrimSpace(string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
