// ABOUTME: Search result models returned by the vector store
// ABOUTME: ChunkMatch mirrors the rows of the search_chunks function
package models

// ChunkMatch is a transcript chunk ranked by similarity to a query
type ChunkMatch struct {
	ChunkID          string  `json:"id"`
	Content          string  `json:"content"`
	Speaker          string  `json:"speaker"`
	TimestampStart   string  `json:"timestamp_start"`
	TimestampSeconds int     `json:"timestamp_seconds"`
	EpisodeTitle     string  `json:"episode_title"`
	EpisodeSlug      string  `json:"episode_slug"`
	GuestName        string  `json:"guest_name"`
	YouTubeURL       string  `json:"youtube_url"`
	Similarity       float64 `json:"similarity"`
}
