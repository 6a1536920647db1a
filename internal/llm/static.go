package llm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"strconv"
)

// DefaultEmbeddingDimensions is the vector length produced when no provider
// reports its own dimensionality.
const DefaultEmbeddingDimensions = 768

// StaticSentinel is the fixed generation output of the stand-in client.
// Callers treat it like any other model response; downstream parsers route it
// through their keyword fallbacks.
const StaticSentinel = "Unable to process request: no generation backend is configured."

// StaticClient is a deterministic stand-in used when no real provider is
// reachable. Generation returns a fixed sentinel; embeddings are pseudo-random
// vectors seeded from a hash of the text, so the same text always maps to the
// same vector.
type StaticClient struct {
	dimensions int
}

// NewStaticClient returns a stand-in client producing vectors of the given
// length. Non-positive dimensions fall back to DefaultEmbeddingDimensions.
func NewStaticClient(dimensions int) *StaticClient {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &StaticClient{dimensions: dimensions}
}

// Name identifies the provider.
func (c *StaticClient) Name() string { return "static" }

// Available always reports true; the stand-in terminates every preference list.
func (c *StaticClient) Available(ctx context.Context) bool { return true }

// GenerateText returns the fixed sentinel response.
func (c *StaticClient) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return StaticSentinel, nil
}

// GenerateEmbeddings returns one deterministic vector per text.
func (c *StaticClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = DeterministicEmbedding(t, c.dimensions)
	}
	return out, nil
}

// DeterministicEmbedding derives a stable pseudo-random vector from text.
// The first 8 hex characters of the md5 digest seed the generator, matching
// components drawn uniformly from [-1, 1).
func DeterministicEmbedding(text string, dimensions int) []float32 {
	sum := md5.Sum([]byte(text))
	digest := hex.EncodeToString(sum[:])
	seed, err := strconv.ParseInt(digest[:8], 16, 64)
	if err != nil {
		seed = 0
	}
	rng := rand.New(rand.NewSource(seed))
	vec := make([]float32, dimensions)
	for i := range vec {
		vec[i] = float32(rng.Float64()*2 - 1)
	}
	return vec
}
