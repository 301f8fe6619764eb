package llm

import (
	"context"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Provider defines the interface all LLM backends must implement. It is a
// unified abstraction over the chat-completion services the assistant can
// talk to (OpenAI-compatible endpoints, Anthropic, Google, local Ollama).
type Provider interface {
	// Name returns the provider name (e.g., "openai", "ollama")
	Name() string

	// Models returns information about available models for this provider
	Models(ctx context.Context) ([]ModelInfo, error)

	// Complete sends a completion request and blocks for the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteWithTools sends a completion request with tool definitions.
	// The model may answer with one or more tool calls instead of text.
	CompleteWithTools(ctx context.Context, req CompletionRequest, tools []ToolDef) (*CompletionResponse, error)

	// Stream sends a completion request and emits chunks on the returned
	// channel until completion or error. The channel is closed when done.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)

	// Health checks provider connectivity
	Health(ctx context.Context) types.HealthStatus
}

// ModelInfo contains metadata about an LLM model.
type ModelInfo struct {
	Name          string   `json:"name"`
	ContextWindow int      `json:"context_window"`
	MaxOutput     int      `json:"max_output"`
	Features      []string `json:"features"`
}

// SupportsFeature checks if the model supports a given feature
func (m ModelInfo) SupportsFeature(feature string) bool {
	for _, f := range m.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// SupportsJSONMode checks if the model supports structured JSON output
func (m ModelInfo) SupportsJSONMode() bool {
	return m.SupportsFeature("json")
}

// SupportsToolUse checks if the model supports tool/function calling
func (m ModelInfo) SupportsToolUse() bool {
	return m.SupportsFeature("tools")
}
