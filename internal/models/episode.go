// ABOUTME: Episode and Guest models for the transcript corpus
// ABOUTME: Slugs are the natural keys used for idempotent upserts
package models

import "time"

// Episode is one parsed transcript document
type Episode struct {
	ID                  string    `json:"id,omitempty"`
	Slug                string    `json:"slug"`
	Title               string    `json:"title"`
	Guest               string    `json:"guest"`
	YouTubeURL          string    `json:"youtube_url"`
	VideoID             string    `json:"video_id"`
	Description         string    `json:"description"`
	DurationSeconds     int       `json:"duration_seconds"`
	DurationDisplay     string    `json:"duration_display"`
	ViewCount           int       `json:"view_count"`
	TranscriptRaw       string    `json:"transcript_raw,omitempty"`
	TranscriptWordCount int       `json:"transcript_word_count"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
	Chunks              []Chunk   `json:"-"`
}

// Guest is a person appearing on one or more episodes
type Guest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// EpisodeSort orders episode listings
type EpisodeSort string

const (
	SortByViews    EpisodeSort = "views"
	SortByDuration EpisodeSort = "duration"
	SortByRecent   EpisodeSort = "recent"
)

// IsValid reports whether s is a known sort order
func (s EpisodeSort) IsValid() bool {
	switch s {
	case SortByViews, SortByDuration, SortByRecent:
		return true
	}
	return false
}

// EpisodeFilter narrows an episode listing
type EpisodeFilter struct {
	Guest  string
	Search string
	Sort   EpisodeSort
	Limit  int
}

// Stats holds row counts per table
type Stats struct {
	Guests        int64 `json:"guests"`
	Episodes      int64 `json:"episodes"`
	EpisodeGuests int64 `json:"episode_guests"`
	Chunks        int64 `json:"chunks"`
}
