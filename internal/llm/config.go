package llm

import (
	"fmt"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// ProviderType represents the type of LLM provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
	ProviderMock      ProviderType = "mock"
)

// Config contains the root LLM configuration: which provider to use by
// default and per-provider settings.
type Config struct {
	DefaultProvider string                    `mapstructure:"default_provider" yaml:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// Validate ensures the default provider exists and every provider entry
// is itself valid.
func (c *Config) Validate() error {
	if c.DefaultProvider == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "llm.default_provider cannot be empty")
	}
	if len(c.Providers) == 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "llm.providers cannot be empty")
	}
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return types.NewError(
			types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("llm.default_provider %q not found in providers", c.DefaultProvider),
		)
	}
	for name, p := range c.Providers {
		if err := p.Validate(); err != nil {
			return types.WrapError(
				types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("llm provider %q", name),
				err,
			)
		}
	}
	return nil
}

// ProviderConfig contains configuration for one LLM backend.
type ProviderConfig struct {
	Type         ProviderType   `mapstructure:"type" yaml:"type"`
	APIKey       string         `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string         `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string         `mapstructure:"default_model" yaml:"default_model"`
	Temperature  float64        `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens    int            `mapstructure:"max_tokens" yaml:"max_tokens"`
	Options      map[string]any `mapstructure:"options" yaml:"options"`
}

// Validate checks required fields for the provider type.
func (p *ProviderConfig) Validate() error {
	switch p.Type {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderOllama, ProviderMock:
	case "":
		return fmt.Errorf("provider type cannot be empty")
	default:
		return fmt.Errorf("unknown provider type %q", p.Type)
	}
	if p.Type != ProviderOllama && p.Type != ProviderMock && p.DefaultModel == "" {
		return fmt.Errorf("default_model is required for %s", p.Type)
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", p.Temperature)
	}
	return nil
}
