package embed

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// MockEmbedder produces deterministic pseudo-embeddings for tests and for
// running the service without an embeddings backend. Identical texts map
// to identical vectors, so similarity comparisons behave predictably.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a deterministic embedder with the given
// dimensionality.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed hashes the text into a unit-norm vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimensions)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(int64(seed%2000)-1000) / 1000.0
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the vector dimensionality.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the mock model name.
func (e *MockEmbedder) Model() string {
	return "mock-embedder"
}

// Health always reports healthy.
func (e *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("")
}
