// ABOUTME: Corpus writes and episode listing for the SQLite store
// ABOUTME: Upserts key on natural keys and return the stable row IDs
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/podcast-wisdom/internal/models"
)

// UpsertGuest inserts or renames the guest with the given slug
func (s *Store) UpsertGuest(ctx context.Context, name, slug string) (string, error) {
	var id string
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO guests (id, name, slug)
		VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET name = excluded.name
		RETURNING id
	`, uuid.NewString(), name, slug).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert guest %s: %w", slug, err)
	}
	return id, nil
}

// UpsertEpisode inserts or refreshes the episode with ep.Slug
func (s *Store) UpsertEpisode(ctx context.Context, ep *models.Episode) (string, error) {
	var id string
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO episodes (
			id, slug, title, youtube_url, video_id, description,
			duration_seconds, duration_display, view_count,
			transcript_raw, transcript_word_count, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			youtube_url = excluded.youtube_url,
			video_id = excluded.video_id,
			description = excluded.description,
			duration_seconds = excluded.duration_seconds,
			duration_display = excluded.duration_display,
			view_count = excluded.view_count,
			transcript_raw = excluded.transcript_raw,
			transcript_word_count = excluded.transcript_word_count,
			updated_at = excluded.updated_at
		RETURNING id
	`, uuid.NewString(), ep.Slug, ep.Title, ep.YouTubeURL, ep.VideoID, ep.Description,
		ep.DurationSeconds, ep.DurationDisplay, ep.ViewCount,
		ep.TranscriptRaw, ep.TranscriptWordCount, time.Now().UnixNano()).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert episode %s: %w", ep.Slug, err)
	}
	return id, nil
}

// LinkEpisodeGuest records that a guest appears on an episode
func (s *Store) LinkEpisodeGuest(ctx context.Context, episodeID, guestID string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO episode_guests (episode_id, guest_id)
		VALUES (?, ?)
		ON CONFLICT(episode_id, guest_id) DO NOTHING
	`, episodeID, guestID)
	if err != nil {
		return fmt.Errorf("failed to link guest %s to episode %s: %w", guestID, episodeID, err)
	}
	return nil
}

// UpsertChunk inserts or replaces the chunk at (episodeID, chunk.Index)
func (s *Store) UpsertChunk(ctx context.Context, episodeID string, chunk models.Chunk) error {
	var blob any
	if len(chunk.Embedding) > 0 {
		blob = vectorToBlob(chunk.Embedding)
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO transcript_chunks (
			id, episode_id, chunk_index, speaker, timestamp_start,
			timestamp_seconds, content, word_count, embedding
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(episode_id, chunk_index) DO UPDATE SET
			speaker = excluded.speaker,
			timestamp_start = excluded.timestamp_start,
			timestamp_seconds = excluded.timestamp_seconds,
			content = excluded.content,
			word_count = excluded.word_count,
			embedding = excluded.embedding
	`, uuid.NewString(), episodeID, chunk.Index, chunk.Speaker, chunk.TimestampStart,
		chunk.TimestampSeconds, chunk.Content, chunk.WordCount, blob)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk %d of episode %s: %w", chunk.Index, episodeID, err)
	}
	return nil
}

// guestNamesExpr aggregates an episode's guest names into one display string
const guestNamesExpr = `COALESCE((
	SELECT group_concat(g.name, ', ')
	FROM episode_guests eg JOIN guests g ON g.id = eg.guest_id
	WHERE eg.episode_id = e.id
), '')`

// ListEpisodes returns episodes matching filter. Guest and search are
// case-insensitive substring matches applied before the limit.
func (s *Store) ListEpisodes(ctx context.Context, filter models.EpisodeFilter) ([]models.Episode, error) {
	var (
		where []string
		args  []any
	)

	if filter.Search != "" {
		where = append(where, "(e.title LIKE ? OR e.description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Guest != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM episode_guests eg JOIN guests g ON g.id = eg.guest_id
			WHERE eg.episode_id = e.id AND g.name LIKE ?
		)`)
		args = append(args, "%"+filter.Guest+"%")
	}

	query := `
		SELECT e.id, e.slug, e.title, e.youtube_url, e.video_id, e.description,
			e.duration_seconds, e.duration_display, e.view_count,
			e.transcript_word_count, e.updated_at, ` + guestNamesExpr + `
		FROM episodes e`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY " + orderColumn(filter.Sort) + " DESC, e.slug ASC"
	if filter.Limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var episodes []models.Episode
	for rows.Next() {
		var (
			ep        models.Episode
			updatedAt int64
		)
		if err := rows.Scan(&ep.ID, &ep.Slug, &ep.Title, &ep.YouTubeURL, &ep.VideoID, &ep.Description,
			&ep.DurationSeconds, &ep.DurationDisplay, &ep.ViewCount,
			&ep.TranscriptWordCount, &updatedAt, &ep.Guest); err != nil {
			return nil, err
		}
		ep.UpdatedAt = time.Unix(0, updatedAt).UTC()
		episodes = append(episodes, ep)
	}

	return episodes, rows.Err()
}

func orderColumn(sort models.EpisodeSort) string {
	switch sort {
	case models.SortByDuration:
		return "e.duration_seconds"
	case models.SortByRecent:
		return "e.updated_at"
	default:
		return "e.view_count"
	}
}

// Stats counts rows in every corpus table
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	counts := []struct {
		table string
		dest  *int64
	}{
		{"guests", &stats.Guests},
		{"episodes", &stats.Episodes},
		{"episode_guests", &stats.EpisodeGuests},
		{"transcript_chunks", &stats.Chunks},
	}

	for _, c := range counts {
		if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	return &stats, nil
}
