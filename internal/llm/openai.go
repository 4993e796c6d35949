// ABOUTME: OpenAI provider for embeddings and chat generation
// ABOUTME: Uses text-embedding-3-small truncated to the configured dimension and gpt-4o-mini
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/podcast-wisdom/internal/util"
)

const (
	// DefaultOpenAIChatModel is the default model for chat completions
	DefaultOpenAIChatModel = "gpt-4o-mini"
	// DefaultOpenAIEmbeddingModel is the default model for embeddings
	DefaultOpenAIEmbeddingModel = openai.SmallEmbedding3
)

// OpenAIConfig holds configuration for the OpenAI client
type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	// Dimensions asks the embedding model for shorter vectors; 0 keeps the model default
	Dimensions int
	// BaseURL overrides the API endpoint (OpenAI-compatible servers, tests)
	BaseURL string
	Retry   RetryConfig
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimensions     int
	retry          RetryConfig
}

// NewOpenAIClient creates a new OpenAI client with custom configuration
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultOpenAIChatModel
	}
	embeddingModel := openai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultOpenAIEmbeddingModel
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientConfig),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dimensions:     cfg.Dimensions,
		retry:          cfg.Retry,
	}, nil
}

// Close is a no-op; the HTTP client needs no teardown
func (c *OpenAIClient) Close() error { return nil }

// EmbedBatch embeds all texts in one request. OpenAI has no retrieval intent,
// so intent is ignored.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string, _ Intent) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := util.Retry(ctx, c.retry.MaxRetries, c.retry.RetryDelay, func(ctx context.Context) error {
		attemptCtx, cancel := c.retry.attemptContext(ctx)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(attemptCtx, openai.EmbeddingRequestStrings{
			Input:      texts,
			Model:      c.embeddingModel,
			Dimensions: c.dimensions,
		})
		if err != nil {
			return err
		}

		data := resp.Data
		sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

		out := make([][]float32, len(data))
		for i, d := range data {
			out[i] = d.Embedding
		}
		if err := checkCount(texts, out); err != nil {
			return err
		}

		vectors = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed %d texts: %w", len(texts), err)
	}
	return vectors, nil
}

// Generate runs a single-turn chat completion
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := util.Retry(ctx, c.retry.MaxRetries, c.retry.RetryDelay, func(ctx context.Context) error {
		attemptCtx, cancel := c.retry.attemptContext(ctx)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		})
		if err != nil {
			return err
		}

		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}

		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	return text, nil
}
