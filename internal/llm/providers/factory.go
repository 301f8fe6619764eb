package providers

import (
	"fmt"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// NewProvider creates an LLM provider from its configuration.
func NewProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	switch cfg.Type {
	case llm.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case llm.ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case llm.ProviderGoogle:
		return NewGoogleProvider(cfg)
	case llm.ProviderOllama:
		return NewOllamaProvider(cfg)
	case llm.ProviderMock:
		return NewMockProvider("好的。"), nil
	default:
		return nil, types.NewError(
			types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown provider type: %s", cfg.Type),
		)
	}
}

// FromConfig builds the default provider named by the root LLM config.
func FromConfig(cfg llm.Config) (llm.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewProvider(cfg.Providers[cfg.DefaultProvider])
}
