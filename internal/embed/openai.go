package embed

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// OpenAIEmbedder generates embeddings through an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.LLM
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder from the embedding configuration.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
			"embedding.api_key is required for the openai provider")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.EMBEDDING_FAILED, "init embedding client", err)
	}

	return &OpenAIEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	raw, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, types.WrapRetryableError(types.EMBEDDING_FAILED, "create embeddings", err)
	}
	if len(raw) != len(texts) {
		return nil, types.NewError(types.EMBEDDING_FAILED, "embedding count mismatch")
	}

	vectors := make([][]float64, len(raw))
	for i, vec := range raw {
		converted := make([]float64, len(vec))
		for j, v := range vec {
			converted[j] = float64(v)
		}
		vectors[i] = converted
	}
	return vectors, nil
}

// Dimensions returns the configured vector dimensionality.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Health probes the embeddings endpoint with a short input.
func (e *OpenAIEmbedder) Health(ctx context.Context) types.HealthStatus {
	if _, err := e.Embed(ctx, "ping"); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}
