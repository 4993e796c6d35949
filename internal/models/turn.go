// ABOUTME: Turn represents one speaker's contiguous span of a transcript
// ABOUTME: Produced by the segmenter, consumed by the chunk engine
package models

import "strings"

// UnknownSpeaker is attributed to turns before any named marker appears
const UnknownSpeaker = "Unknown"

// Turn is a single speaker turn bounded by timestamp markers
type Turn struct {
	Speaker          string `json:"speaker"`
	Timestamp        string `json:"timestamp"`
	TimestampSeconds int    `json:"timestamp_seconds"`
	Content          string `json:"content"`
}

// WordCount returns the number of whitespace-separated words in the turn
func (t Turn) WordCount() int {
	return CountWords(t.Content)
}

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}
