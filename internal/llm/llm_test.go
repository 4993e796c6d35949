// ABOUTME: Tests for the embedding helpers, provider factory and Gemini response handling
// ABOUTME: Runs without network access
package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns one vector per text whose single value is the text length
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   [][]string
	intents []Intent
	failOn  string
	short   bool
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string, intent Intent) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.intents = append(f.intents, intent)
	f.mu.Unlock()

	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if f.failOn != "" && t == f.failOn {
			return nil, errors.New("provider rejected text")
		}
		out = append(out, []float32{float32(len(t))})
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func TestEmbedOne(t *testing.T) {
	f := &fakeEmbedder{}
	v, err := EmbedOne(context.Background(), f, "hello", IntentQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{5}, v)
	assert.Equal(t, []Intent{IntentQuery}, f.intents)

	_, err = EmbedOne(context.Background(), &fakeEmbedder{short: true}, "hello", IntentQuery)
	assert.ErrorIs(t, err, ErrEmbeddingCount)
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "query", IntentQuery.String())
	assert.Equal(t, "document", IntentDocument.String())
}

func TestGeminiTaskType(t *testing.T) {
	assert.Equal(t, genai.TaskTypeRetrievalQuery, geminiTaskType(IntentQuery))
	assert.Equal(t, genai.TaskTypeRetrievalDocument, geminiTaskType(IntentDocument))
}

func TestCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Hire "), genai.Text("slow.")}},
		}},
	}
	text, ok := candidateText(resp)
	assert.True(t, ok)
	assert.Equal(t, "Hire slow.", text)

	_, ok = candidateText(&genai.GenerateContentResponse{})
	assert.False(t, ok)
	_, ok = candidateText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.False(t, ok)
	_, ok = candidateText(nil)
	assert.False(t, ok)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Provider: "OpenAI", APIKey: "sk-test"})
	require.NoError(t, err)
	_, isOpenAI := p.(*OpenAIClient)
	assert.True(t, isOpenAI)
	assert.NoError(t, p.Close())

	_, err = NewProvider(ctx, Config{Provider: "claude", APIKey: "x"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))

	_, err = NewProvider(ctx, Config{Provider: ProviderGemini})
	assert.Error(t, err, "gemini requires an API key")

	_, err = NewProvider(ctx, Config{Provider: ProviderOpenAI})
	assert.Error(t, err, "openai requires an API key")
}
