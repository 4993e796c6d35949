// ABOUTME: Hosted Supabase backend over the PostgREST API
// ABOUTME: Upserts use on_conflict natural keys; search calls the search_chunks RPC
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/harper/podcast-wisdom/internal/models"
)

const restPath = "/rest/v1"

// Store talks to a Supabase project with its URL and API key
type Store struct {
	client *supa.Client
	// RPC calls use their own PostgREST client because the SDK discards RPC
	// errors. postgrest.Client reports them through a shared field, so each
	// call gets a fresh client.
	rpcURL     string
	rpcHeaders map[string]string
}

// New creates a Store. No request is made until the first call.
func New(url, key string) (*Store, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase URL and key are required")
	}

	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}

	return &Store{
		client: client,
		rpcURL: strings.TrimRight(url, "/") + restPath,
		rpcHeaders: map[string]string{
			"apikey":        key,
			"Authorization": "Bearer " + key,
		},
	}, nil
}

func (s *Store) newRPC() *postgrest.Client {
	return postgrest.NewClient(s.rpcURL, "", s.rpcHeaders)
}

// Close is a no-op; the clients hold no long-lived connections
func (s *Store) Close() error { return nil }

type idRow struct {
	ID string `json:"id"`
}

func firstID(rows []idRow, what string) (string, error) {
	if len(rows) == 0 || rows[0].ID == "" {
		return "", fmt.Errorf("upsert %s returned no row", what)
	}
	return rows[0].ID, nil
}

// UpsertGuest upserts on slug
func (s *Store) UpsertGuest(_ context.Context, name, slug string) (string, error) {
	var rows []idRow
	_, err := s.client.From("guests").
		Upsert(map[string]any{"name": name, "slug": slug}, "slug", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("upsert guest %s: %w", slug, err)
	}
	return firstID(rows, "guest "+slug)
}

// UpsertEpisode upserts on slug
func (s *Store) UpsertEpisode(_ context.Context, ep *models.Episode) (string, error) {
	row := map[string]any{
		"slug":                  ep.Slug,
		"title":                 ep.Title,
		"youtube_url":           ep.YouTubeURL,
		"video_id":              ep.VideoID,
		"description":           ep.Description,
		"duration_seconds":      ep.DurationSeconds,
		"duration_display":      ep.DurationDisplay,
		"view_count":            ep.ViewCount,
		"transcript_raw":        ep.TranscriptRaw,
		"transcript_word_count": ep.TranscriptWordCount,
		"updated_at":            time.Now().UTC().Format(time.RFC3339Nano),
	}

	var rows []idRow
	_, err := s.client.From("episodes").
		Upsert(row, "slug", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("upsert episode %s: %w", ep.Slug, err)
	}
	return firstID(rows, "episode "+ep.Slug)
}

// LinkEpisodeGuest upserts on (episode_id, guest_id)
func (s *Store) LinkEpisodeGuest(_ context.Context, episodeID, guestID string) error {
	_, _, err := s.client.From("episode_guests").
		Upsert(map[string]any{"episode_id": episodeID, "guest_id": guestID}, "episode_id,guest_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("link guest %s to episode %s: %w", guestID, episodeID, err)
	}
	return nil
}

// UpsertChunk upserts on (episode_id, chunk_index)
func (s *Store) UpsertChunk(_ context.Context, episodeID string, chunk models.Chunk) error {
	row := map[string]any{
		"episode_id":        episodeID,
		"chunk_index":       chunk.Index,
		"speaker":           chunk.Speaker,
		"timestamp_start":   chunk.TimestampStart,
		"timestamp_seconds": chunk.TimestampSeconds,
		"content":           chunk.Content,
		"word_count":        chunk.WordCount,
	}
	if len(chunk.Embedding) > 0 {
		row["embedding"] = chunk.Embedding
	}

	_, _, err := s.client.From("transcript_chunks").
		Upsert(row, "episode_id,chunk_index", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert chunk %d of episode %s: %w", chunk.Index, episodeID, err)
	}
	return nil
}

// SearchChunks calls the search_chunks database function
func (s *Store) SearchChunks(_ context.Context, query []float32, threshold float64, limit int) ([]models.ChunkMatch, error) {
	rpc := s.newRPC()
	body := rpc.Rpc("search_chunks", "", map[string]any{
		"query_embedding": query,
		"match_threshold": threshold,
		"match_count":     limit,
	})
	if rpc.ClientError != nil {
		return nil, fmt.Errorf("search_chunks rpc: %w", rpc.ClientError)
	}

	var results []models.ChunkMatch
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		return nil, fmt.Errorf("search_chunks rpc: unexpected response %q: %w", truncate(body, 200), err)
	}
	return results, nil
}

type episodeRow struct {
	ID                  string `json:"id"`
	Slug                string `json:"slug"`
	Title               string `json:"title"`
	YouTubeURL          string `json:"youtube_url"`
	VideoID             string `json:"video_id"`
	Description         string `json:"description"`
	DurationSeconds     int    `json:"duration_seconds"`
	DurationDisplay     string `json:"duration_display"`
	ViewCount           int    `json:"view_count"`
	TranscriptWordCount int    `json:"transcript_word_count"`
	UpdatedAt           string `json:"updated_at"`
	Guests              []struct {
		Name string `json:"name"`
	} `json:"guests"`
}

const episodeColumns = "id,slug,title,youtube_url,video_id,description,duration_seconds,duration_display,view_count,transcript_word_count,updated_at,guests(name)"

// ListEpisodes resolves the guest filter to episode IDs first so the limit
// applies to the filtered set.
func (s *Store) ListEpisodes(ctx context.Context, filter models.EpisodeFilter) ([]models.Episode, error) {
	var episodeIDs []string
	if filter.Guest != "" {
		ids, err := s.episodeIDsForGuest(ctx, filter.Guest)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		episodeIDs = ids
	}

	q := s.client.From("episodes").Select(episodeColumns, "", false)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Or(fmt.Sprintf("title.ilike.%s,description.ilike.%s", pattern, pattern), "")
	}
	if episodeIDs != nil {
		q = q.In("id", episodeIDs)
	}
	q = q.Order(orderColumn(filter.Sort), &postgrest.OrderOpts{Ascending: false}).
		Order("slug", &postgrest.OrderOpts{Ascending: true})
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit, "")
	}

	var rows []episodeRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}

	episodes := make([]models.Episode, 0, len(rows))
	for _, r := range rows {
		episodes = append(episodes, r.toModel())
	}
	return episodes, nil
}

func (s *Store) episodeIDsForGuest(_ context.Context, guest string) ([]string, error) {
	var guests []idRow
	if _, err := s.client.From("guests").Select("id", "", false).
		Ilike("name", "%"+guest+"%").
		ExecuteTo(&guests); err != nil {
		return nil, fmt.Errorf("find guests matching %q: %w", guest, err)
	}
	if len(guests) == 0 {
		return nil, nil
	}

	guestIDs := make([]string, len(guests))
	for i, g := range guests {
		guestIDs[i] = g.ID
	}

	var links []struct {
		EpisodeID string `json:"episode_id"`
	}
	if _, err := s.client.From("episode_guests").Select("episode_id", "", false).
		In("guest_id", guestIDs).
		ExecuteTo(&links); err != nil {
		return nil, fmt.Errorf("find episodes for guests: %w", err)
	}

	seen := make(map[string]bool, len(links))
	var ids []string
	for _, l := range links {
		if !seen[l.EpisodeID] {
			seen[l.EpisodeID] = true
			ids = append(ids, l.EpisodeID)
		}
	}
	return ids, nil
}

func (r episodeRow) toModel() models.Episode {
	names := make([]string, len(r.Guests))
	for i, g := range r.Guests {
		names[i] = g.Name
	}
	ep := models.Episode{
		ID:                  r.ID,
		Slug:                r.Slug,
		Title:               r.Title,
		Guest:               strings.Join(names, ", "),
		YouTubeURL:          r.YouTubeURL,
		VideoID:             r.VideoID,
		Description:         r.Description,
		DurationSeconds:     r.DurationSeconds,
		DurationDisplay:     r.DurationDisplay,
		ViewCount:           r.ViewCount,
		TranscriptWordCount: r.TranscriptWordCount,
	}
	if t, err := time.Parse(time.RFC3339Nano, r.UpdatedAt); err == nil {
		ep.UpdatedAt = t
	}
	return ep
}

func orderColumn(sort models.EpisodeSort) string {
	switch sort {
	case models.SortByDuration:
		return "duration_seconds"
	case models.SortByRecent:
		return "updated_at"
	default:
		return "view_count"
	}
}

// Stats uses exact head counts so no rows are transferred
func (s *Store) Stats(_ context.Context) (*models.Stats, error) {
	var stats models.Stats
	counts := []struct {
		table  string
		column string
		dest   *int64
	}{
		{"guests", "id", &stats.Guests},
		{"episodes", "id", &stats.Episodes},
		{"episode_guests", "episode_id", &stats.EpisodeGuests},
		{"transcript_chunks", "id", &stats.Chunks},
	}

	for _, c := range counts {
		_, n, err := s.client.From(c.table).Select(c.column, "exact", true).Execute()
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
		*c.dest = n
	}
	return &stats, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..." + strconv.Itoa(len(s)-n) + " more bytes"
}
