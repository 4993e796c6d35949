// ABOUTME: Tests for ChunkEngine turn packing
// ABOUTME: Verifies budgets, sentence splitting, lossless packing and chunk numbering

package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/harper/podcast-wisdom/internal/models"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func TestNewChunkEngine_Defaults(t *testing.T) {
	tests := []struct {
		name       string
		target     int
		max        int
		wantTarget int
		wantMax    int
	}{
		{"zero values use defaults", 0, 0, DefaultTargetWords, DefaultMaxWords},
		{"negative values use defaults", -1, -5, DefaultTargetWords, DefaultMaxWords},
		{"explicit values kept", 50, 80, 50, 80},
		{"target clamped to max", 100, 60, 60, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := NewChunkEngine(tt.target, tt.max)
			if ce.TargetWords() != tt.wantTarget {
				t.Errorf("TargetWords() = %d, want %d", ce.TargetWords(), tt.wantTarget)
			}
			if ce.MaxWords() != tt.wantMax {
				t.Errorf("MaxWords() = %d, want %d", ce.MaxWords(), tt.wantMax)
			}
		})
	}
}

func TestPackTurn_FitsInOneChunk(t *testing.T) {
	ce := NewChunkEngine(0, 0)
	turn := models.Turn{
		Speaker:          "Lenny",
		Timestamp:        "00:00:05",
		TimestampSeconds: 5,
		Content:          "Welcome to the show.   It is great to have you here.",
	}

	chunks := ce.PackTurn(turn)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Content != turn.Content {
		t.Errorf("content changed: %q", c.Content)
	}
	if c.Speaker != "Lenny" || c.TimestampStart != "00:00:05" || c.TimestampSeconds != 5 {
		t.Errorf("turn attribution not carried over: %+v", c)
	}
	if c.WordCount != 11 {
		t.Errorf("WordCount = %d, want 11", c.WordCount)
	}
}

func TestPackTurn_ExactlyMaxIsNotSplit(t *testing.T) {
	ce := NewChunkEngine(5, 10)
	turn := models.Turn{Content: "One two three. Four five six. Seven eight nine ten."}

	chunks := ce.PackTurn(turn)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for a turn at the max, got %d", len(chunks))
	}
}

func TestPackTurn_SplitsOversizedTurn(t *testing.T) {
	ce := NewChunkEngine(10, 15)

	var sentences []string
	for i := 0; i < 8; i++ {
		sentences = append(sentences, words(4)+".")
	}
	turn := models.Turn{
		Speaker:   "Shreyas",
		Timestamp: "00:10:00",
		Content:   strings.Join(sentences, " "),
	}

	chunks := ce.PackTurn(turn)
	// 8 sentences of 4 words pack two at a time against a target of 10
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.WordCount != 8 {
			t.Errorf("chunk %d: WordCount = %d, want 8", i, c.WordCount)
		}
		if c.WordCount > ce.MaxWords() {
			t.Errorf("chunk %d exceeds max: %d", i, c.WordCount)
		}
		if c.Speaker != "Shreyas" || c.TimestampStart != "00:10:00" {
			t.Errorf("chunk %d lost turn attribution: %+v", i, c)
		}
	}
}

func TestPackTurn_Lossless(t *testing.T) {
	ce := NewChunkEngine(6, 9)
	turn := models.Turn{Content: "First sentence is here! Second one asks why? Third\nline goes on and on. Fourth is short. Fifth ends the turn without punctuation"}

	chunks := ce.PackTurn(turn)
	if len(chunks) < 2 {
		t.Fatalf("expected the turn to be split, got %d chunk(s)", len(chunks))
	}

	var got []string
	for _, c := range chunks {
		got = append(got, strings.Fields(c.Content)...)
	}
	want := strings.Fields(turn.Content)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("words not preserved:\n got %v\nwant %v", got, want)
	}
}

func TestPackTurn_OversizedSentencePassesThrough(t *testing.T) {
	ce := NewChunkEngine(5, 8)
	turn := models.Turn{Content: "a b c d e f g h i j. k l."}

	chunks := ce.PackTurn(turn)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "a b c d e f g h i j." || chunks[0].WordCount != 10 {
		t.Errorf("first chunk = %q (%d words)", chunks[0].Content, chunks[0].WordCount)
	}
	if chunks[1].Content != "k l." || chunks[1].WordCount != 2 {
		t.Errorf("second chunk = %q (%d words)", chunks[1].Content, chunks[1].WordCount)
	}
}

func TestChunkTurns_ContiguousIndices(t *testing.T) {
	ce := NewChunkEngine(3, 4)
	turns := []models.Turn{
		{Speaker: "A", Content: "short turn"},
		{Speaker: "B", Content: "one two three. four five six. seven eight."},
		{Speaker: "A", Content: "done"},
	}

	chunks := ce.ChunkTurns(turns)
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
	}
	if chunks[4].Speaker != "A" || chunks[4].Content != "done" {
		t.Errorf("unexpected last chunk: %+v", chunks[4])
	}
}

func TestChunkTurns_Empty(t *testing.T) {
	ce := NewChunkEngine(0, 0)
	if chunks := ce.ChunkTurns(nil); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single sentence", "Just one.", []string{"Just one."}},
		{"mixed terminators", "Hi! How are you? Fine.", []string{"Hi!", "How are you?", "Fine."}},
		{"no terminator", "no punctuation here", []string{"no punctuation here"}},
		{"decimal stays whole", "It grew 2.5x this year. Nice.", []string{"It grew 2.5x this year.", "Nice."}},
		{"newline after period", "Line one.\nLine two.", []string{"Line one.", "Line two."}},
		{"run of whitespace", "A.   B.", []string{"A.", "B."}},
		{"trailing whitespace dropped", "End.  ", []string{"End."}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
