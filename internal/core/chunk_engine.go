// ABOUTME: ChunkEngine repacks speaker turns into bounded-size chunks for embedding
// ABOUTME: Oversized turns are split at sentence boundaries against a word budget
package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harper/podcast-wisdom/internal/models"
)

const (
	// DefaultTargetWords is the soft budget a split turn's chunks are packed to
	DefaultTargetWords = 400
	// DefaultMaxWords is the size above which a turn gets split
	DefaultMaxWords = 600
)

// ChunkEngine packs turns into chunks
type ChunkEngine struct {
	targetWords int
	maxWords    int
}

// NewChunkEngine creates a ChunkEngine. Non-positive budgets fall back to the
// defaults, and a target above the maximum is clamped to it.
func NewChunkEngine(targetWords, maxWords int) *ChunkEngine {
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if targetWords > maxWords {
		targetWords = maxWords
	}
	return &ChunkEngine{targetWords: targetWords, maxWords: maxWords}
}

// TargetWords returns the packing target
func (ce *ChunkEngine) TargetWords() int { return ce.targetWords }

// MaxWords returns the split threshold
func (ce *ChunkEngine) MaxWords() int { return ce.maxWords }

// ChunkTurns packs every turn and numbers the resulting chunks 0..n-1 in
// emission order. The index is the chunk's per-episode persistence key.
func (ce *ChunkEngine) ChunkTurns(turns []models.Turn) []models.Chunk {
	var chunks []models.Chunk
	for _, turn := range turns {
		chunks = append(chunks, ce.PackTurn(turn)...)
	}
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// PackTurn returns the turn as one chunk when it fits within the maximum, or
// greedily packed sentence runs otherwise. Every chunk keeps the turn's speaker
// and timestamp. A single sentence longer than the budget is emitted whole.
func (ce *ChunkEngine) PackTurn(turn models.Turn) []models.Chunk {
	wordCount := models.CountWords(turn.Content)
	if wordCount <= ce.maxWords {
		return []models.Chunk{newChunk(turn, turn.Content, wordCount)}
	}

	var (
		chunks    []models.Chunk
		buffer    []string
		bufferLen int
	)

	flush := func() {
		content := strings.Join(buffer, " ")
		chunks = append(chunks, newChunk(turn, content, models.CountWords(content)))
	}

	for _, sentence := range splitSentences(turn.Content) {
		sentenceLen := models.CountWords(sentence)
		if bufferLen+sentenceLen > ce.targetWords && len(buffer) > 0 {
			flush()
			buffer = []string{sentence}
			bufferLen = sentenceLen
			continue
		}
		buffer = append(buffer, sentence)
		bufferLen += sentenceLen
	}

	if len(buffer) > 0 {
		flush()
	}

	return chunks
}

func newChunk(turn models.Turn, content string, wordCount int) models.Chunk {
	return models.Chunk{
		Speaker:          turn.Speaker,
		TimestampStart:   turn.Timestamp,
		TimestampSeconds: turn.TimestampSeconds,
		Content:          content,
		WordCount:        wordCount,
	}
}

// splitSentences cuts text after every '.', '!' or '?' that is followed by
// whitespace, dropping that whitespace. Empty pieces are discarded.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		next := i
		for next < len(text) {
			ws, wsSize := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(ws) {
				break
			}
			next += wsSize
		}
		if next == i {
			continue
		}

		if piece := text[start:i]; piece != "" {
			sentences = append(sentences, piece)
		}
		start = next
		i = next
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}
