// ABOUTME: Chunk represents a bounded-size transcript segment for embedding
// ABOUTME: Natural key is (episode, chunk index); index is zero-based per episode
package models

import (
	"errors"
	"fmt"
)

// Chunk is the unit of embedding and retrieval
type Chunk struct {
	Index            int       `json:"chunk_index"`
	Speaker          string    `json:"speaker"`
	TimestampStart   string    `json:"timestamp_start"`
	TimestampSeconds int       `json:"timestamp_seconds"`
	Content          string    `json:"content"`
	WordCount        int       `json:"word_count"`
	Embedding        []float32 `json:"embedding,omitempty"`
}

// ValidateEmbedding checks that the chunk carries a vector of the expected dimension
func (c *Chunk) ValidateEmbedding(expectedDim int) error {
	if len(c.Embedding) == 0 {
		return errors.New("embedding vector cannot be empty")
	}
	if expectedDim > 0 && len(c.Embedding) != expectedDim {
		return fmt.Errorf("invalid embedding dimension for chunk %d: expected %d, got %d", c.Index, expectedDim, len(c.Embedding))
	}
	return nil
}
