// ABOUTME: Gemini provider for embeddings and generation
// ABOUTME: Uses text-embedding-004 with retrieval task types and gemini-1.5-flash
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/harper/podcast-wisdom/internal/util"
)

const (
	// DefaultGeminiChatModel generates advisory text
	DefaultGeminiChatModel = "gemini-1.5-flash"
	// DefaultGeminiEmbeddingModel produces 768-dimensional vectors
	DefaultGeminiEmbeddingModel = "text-embedding-004"
)

// GeminiClient wraps the Gemini API client with retry logic
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	retry          RetryConfig
}

// NewGeminiClient creates a client; empty model names use the defaults
func NewGeminiClient(ctx context.Context, apiKey, chatModel, embeddingModel string, retry RetryConfig) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if chatModel == "" {
		chatModel = DefaultGeminiChatModel
	}
	if embeddingModel == "" {
		embeddingModel = DefaultGeminiEmbeddingModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		retry:          retry,
	}, nil
}

// Close releases the underlying connection
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func geminiTaskType(intent Intent) genai.TaskType {
	if intent == IntentQuery {
		return genai.TaskTypeRetrievalQuery
	}
	return genai.TaskTypeRetrievalDocument
}

// EmbedBatch sends all texts in a single batch request
func (c *GeminiClient) EmbedBatch(ctx context.Context, texts []string, intent Intent) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := c.client.EmbeddingModel(c.embeddingModel)
	em.TaskType = geminiTaskType(intent)

	var vectors [][]float32
	err := util.Retry(ctx, c.retry.MaxRetries, c.retry.RetryDelay, func(ctx context.Context) error {
		attemptCtx, cancel := c.retry.attemptContext(ctx)
		defer cancel()

		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}

		resp, err := em.BatchEmbedContents(attemptCtx, batch)
		if err != nil {
			return err
		}

		out := make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			if e == nil || len(e.Values) == 0 {
				return fmt.Errorf("empty embedding at position %d", i)
			}
			out[i] = e.Values
		}
		if err := checkCount(texts, out); err != nil {
			return err
		}

		vectors = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed %d texts: %w", len(texts), err)
	}
	return vectors, nil
}

// Generate returns the text of the first candidate
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.chatModel)

	var text string
	err := util.Retry(ctx, c.retry.MaxRetries, c.retry.RetryDelay, func(ctx context.Context) error {
		attemptCtx, cancel := c.retry.attemptContext(ctx)
		defer cancel()

		resp, err := model.GenerateContent(attemptCtx, genai.Text(prompt))
		if err != nil {
			return err
		}

		out, ok := candidateText(resp)
		if !ok {
			return errors.New("no response candidates or content")
		}
		text = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return text, nil
}

func candidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
