// ABOUTME: Embedding and generation ports used by ingestion and the advisor tools
// ABOUTME: Providers embed in order-preserving batches with a query or document intent
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Intent tells the embedding model how the text will be used
type Intent int

const (
	// IntentDocument embeds corpus text for storage
	IntentDocument Intent = iota
	// IntentQuery embeds a search query
	IntentQuery
)

func (i Intent) String() string {
	if i == IntentQuery {
		return "query"
	}
	return "document"
}

// Embedder turns texts into vectors. The result has one vector per input, in
// input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, intent Intent) ([][]float32, error)
}

// Generator produces free text from a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider is a hosted model service offering both capabilities
type Provider interface {
	Embedder
	Generator
	Close() error
}

// ErrEmbeddingCount is returned when a provider answers with the wrong number of vectors
var ErrEmbeddingCount = errors.New("embedding count mismatch")

// EmbedOne embeds a single text
func EmbedOne(ctx context.Context, e Embedder, text string, intent Intent) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text}, intent)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1, got %d", ErrEmbeddingCount, len(vectors))
	}
	return vectors[0], nil
}

// RetryConfig bounds each remote call
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	// Timeout applies to each attempt
	Timeout time.Duration
}

// DefaultRetryConfig matches the configuration defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, RetryDelay: 2 * time.Second, Timeout: 30 * time.Second}
}

func (rc RetryConfig) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if rc.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rc.Timeout)
}

func checkCount(texts []string, vectors [][]float32) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: sent %d texts, got %d vectors", ErrEmbeddingCount, len(texts), len(vectors))
	}
	return nil
}
