// ABOUTME: Provider factory selecting Gemini or OpenAI by name
// ABOUTME: Empty provider names default to Gemini
package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config selects and configures a provider
type Config struct {
	Provider       string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Dimension      int
	BaseURL        string
	Retry          RetryConfig
}

// NewProvider builds the configured provider
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.ChatModel, cfg.EmbeddingModel, cfg.Retry)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI:
		c, err := NewOpenAIClient(OpenAIConfig{
			APIKey:         cfg.APIKey,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			Dimensions:     cfg.Dimension,
			BaseURL:        cfg.BaseURL,
			Retry:          cfg.Retry,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
