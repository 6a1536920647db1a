// Package llm provides generation and embedding clients with provider selection.
package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Client is the outbound AI capability used by the pipeline. Implementations
// must be safe for concurrent use.
type Client interface {
	// GenerateText returns a completion for prompt. systemPrompt may be empty.
	GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error)
	// GenerateEmbeddings returns one vector per input text.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// Available reports whether the backend can currently serve calls.
	Available(ctx context.Context) bool
	// Name identifies the provider for logging.
	Name() string
}

// Selector picks the first available client from a ranked preference list and
// caches it for the process lifetime. The last entry should be a client that
// is always available (see NewStaticClient) so selection never fails.
type Selector struct {
	candidates []Client
	logger     *zap.Logger

	once   sync.Once
	chosen Client
}

// NewSelector creates a selector over candidates in preference order.
func NewSelector(logger *zap.Logger, candidates ...Client) *Selector {
	return &Selector{candidates: candidates, logger: logger}
}

// Pick returns the cached choice, probing candidates on first use.
func (s *Selector) Pick(ctx context.Context) Client {
	s.once.Do(func() {
		for _, c := range s.candidates {
			if c.Available(ctx) {
				s.chosen = c
				s.logger.Info("selected AI provider", zap.String("provider", c.Name()))
				return
			}
			s.logger.Warn("AI provider unavailable", zap.String("provider", c.Name()))
		}
		// Unreachable when a static client terminates the list, but keep the
		// interface total regardless.
		s.chosen = NewStaticClient(DefaultEmbeddingDimensions)
		s.logger.Warn("no AI provider available, using deterministic stand-in")
	})
	return s.chosen
}
