// ABOUTME: Transcript parser splits a markdown document into frontmatter and transcript
// ABOUTME: Builds a fully chunked Episode from a transcript.md file
package core

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harper/podcast-wisdom/internal/models"
)

// TranscriptFileName is the document expected inside every episode directory
const TranscriptFileName = "transcript.md"

const frontmatterDelimiter = "---"

var (
	// ErrNoFrontmatter means the document lacks the two metadata delimiters
	ErrNoFrontmatter = errors.New("no frontmatter found")
	// ErrInvalidMetadata means the metadata block could not be decoded
	ErrInvalidMetadata = errors.New("invalid frontmatter")
)

var transcriptHeading = regexp.MustCompile(`(?s)## Transcript\s*\n(.+)`)

// Metadata holds the recognized frontmatter keys
type Metadata struct {
	Title           string
	Guest           string
	YouTubeURL      string
	VideoID         string
	Description     string
	DurationSeconds int
	Duration        string
	ViewCount       int
}

// ParseDocument splits text into its metadata and raw transcript. Everything
// after a "## Transcript" heading is the transcript; without the heading the
// whole body is used.
func ParseDocument(text string) (*Metadata, string, error) {
	parts := strings.SplitN(text, frontmatterDelimiter, 3)
	if len(parts) < 3 {
		return nil, "", ErrNoFrontmatter
	}

	meta, err := parseMetadata(parts[1])
	if err != nil {
		return nil, "", err
	}

	body := strings.TrimSpace(parts[2])
	raw := body
	if m := transcriptHeading.FindStringSubmatch(body); m != nil {
		raw = strings.TrimSpace(m[1])
	}

	return meta, raw, nil
}

// ParseEpisode parses a document and chunks its transcript
func ParseEpisode(slug, text string, engine *ChunkEngine) (*models.Episode, error) {
	meta, raw, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}

	return &models.Episode{
		Slug:                slug,
		Title:               meta.Title,
		Guest:               meta.Guest,
		YouTubeURL:          meta.YouTubeURL,
		VideoID:             meta.VideoID,
		Description:         meta.Description,
		DurationSeconds:     meta.DurationSeconds,
		DurationDisplay:     meta.Duration,
		ViewCount:           meta.ViewCount,
		TranscriptRaw:       raw,
		TranscriptWordCount: models.CountWords(raw),
		Chunks:              engine.ChunkTurns(SegmentTurns(raw)),
	}, nil
}

// ParseEpisodeFile reads a transcript file; the episode slug is the name of
// the directory containing it.
func ParseEpisodeFile(path string, engine *ChunkEngine) (*models.Episode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	slug := filepath.Base(filepath.Dir(path))
	ep, err := ParseEpisode(slug, string(data), engine)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ep, nil
}

func parseMetadata(block string) (*Metadata, error) {
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	meta := &Metadata{
		Title:       stringField(fields, "title"),
		Guest:       stringField(fields, "guest"),
		YouTubeURL:  stringField(fields, "youtube_url"),
		VideoID:     stringField(fields, "video_id"),
		Description: stringField(fields, "description"),
		Duration:    stringField(fields, "duration"),
	}

	var err error
	if meta.DurationSeconds, err = intField(fields, "duration_seconds"); err != nil {
		return nil, err
	}
	if meta.ViewCount, err = intField(fields, "view_count"); err != nil {
		return nil, err
	}

	return meta, nil
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func intField(fields map[string]any, key string) (int, error) {
	switch v := fields[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(math.Trunc(v)), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidMetadata, key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidMetadata, key, v)
	}
}
