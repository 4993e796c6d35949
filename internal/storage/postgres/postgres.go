// ABOUTME: Direct Postgres backend using the pgx stdlib driver and pgvector
// ABOUTME: Shares table layout and the search_chunks function with the hosted database
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/harper/podcast-wisdom/internal/models"
)

// Store is a corpus backend over a database/sql handle
type Store struct {
	db *sql.DB
}

// Open connects using a postgres:// DSN and verifies connectivity
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying handle
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the pgvector extension, the corpus tables and the
// search_chunks function. It is safe to run on every start.
func (s *Store) EnsureSchema(ctx context.Context, dimension int) error {
	ddl, err := schemaSQL(dimension)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertGuest inserts or renames the guest with the given slug
func (s *Store) UpsertGuest(ctx context.Context, name, slug string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO guests (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, slug).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert guest %s: %w", slug, err)
	}
	return id, nil
}

// UpsertEpisode inserts or refreshes the episode with ep.Slug
func (s *Store) UpsertEpisode(ctx context.Context, ep *models.Episode) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO episodes (
			slug, title, youtube_url, video_id, description,
			duration_seconds, duration_display, view_count,
			transcript_raw, transcript_word_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			youtube_url = EXCLUDED.youtube_url,
			video_id = EXCLUDED.video_id,
			description = EXCLUDED.description,
			duration_seconds = EXCLUDED.duration_seconds,
			duration_display = EXCLUDED.duration_display,
			view_count = EXCLUDED.view_count,
			transcript_raw = EXCLUDED.transcript_raw,
			transcript_word_count = EXCLUDED.transcript_word_count,
			updated_at = now()
		RETURNING id
	`, ep.Slug, ep.Title, ep.YouTubeURL, ep.VideoID, ep.Description,
		ep.DurationSeconds, ep.DurationDisplay, ep.ViewCount,
		ep.TranscriptRaw, ep.TranscriptWordCount).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert episode %s: %w", ep.Slug, err)
	}
	return id, nil
}

// LinkEpisodeGuest records that a guest appears on an episode
func (s *Store) LinkEpisodeGuest(ctx context.Context, episodeID, guestID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO episode_guests (episode_id, guest_id)
		VALUES ($1, $2)
		ON CONFLICT (episode_id, guest_id) DO NOTHING
	`, episodeID, guestID)
	if err != nil {
		return fmt.Errorf("link guest %s to episode %s: %w", guestID, episodeID, err)
	}
	return nil
}

// UpsertChunk inserts or replaces the chunk at (episodeID, chunk.Index)
func (s *Store) UpsertChunk(ctx context.Context, episodeID string, chunk models.Chunk) error {
	var embedding any
	if len(chunk.Embedding) > 0 {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_chunks (
			episode_id, chunk_index, speaker, timestamp_start,
			timestamp_seconds, content, word_count, embedding
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (episode_id, chunk_index) DO UPDATE SET
			speaker = EXCLUDED.speaker,
			timestamp_start = EXCLUDED.timestamp_start,
			timestamp_seconds = EXCLUDED.timestamp_seconds,
			content = EXCLUDED.content,
			word_count = EXCLUDED.word_count,
			embedding = EXCLUDED.embedding
	`, episodeID, chunk.Index, chunk.Speaker, chunk.TimestampStart,
		chunk.TimestampSeconds, chunk.Content, chunk.WordCount, embedding)
	if err != nil {
		return fmt.Errorf("upsert chunk %d of episode %s: %w", chunk.Index, episodeID, err)
	}
	return nil
}

// SearchChunks delegates ranking to the search_chunks SQL function
func (s *Store) SearchChunks(ctx context.Context, query []float32, threshold float64, limit int) ([]models.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, speaker, timestamp_start, timestamp_seconds,
			episode_title, episode_slug, guest_name, youtube_url, similarity
		FROM search_chunks($1, $2, $3)
	`, pgvector.NewVector(query), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.ChunkMatch
	for rows.Next() {
		var m models.ChunkMatch
		if err := rows.Scan(&m.ChunkID, &m.Content, &m.Speaker, &m.TimestampStart, &m.TimestampSeconds,
			&m.EpisodeTitle, &m.EpisodeSlug, &m.GuestName, &m.YouTubeURL, &m.Similarity); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// ListEpisodes returns episodes matching filter
func (s *Store) ListEpisodes(ctx context.Context, filter models.EpisodeFilter) ([]models.Episode, error) {
	query, args := listEpisodesQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var episodes []models.Episode
	for rows.Next() {
		var ep models.Episode
		if err := rows.Scan(&ep.ID, &ep.Slug, &ep.Title, &ep.YouTubeURL, &ep.VideoID, &ep.Description,
			&ep.DurationSeconds, &ep.DurationDisplay, &ep.ViewCount,
			&ep.TranscriptWordCount, &ep.UpdatedAt, &ep.Guest); err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// Stats counts rows in every corpus table
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM guests),
			(SELECT COUNT(*) FROM episodes),
			(SELECT COUNT(*) FROM episode_guests),
			(SELECT COUNT(*) FROM transcript_chunks)
	`).Scan(&stats.Guests, &stats.Episodes, &stats.EpisodeGuests, &stats.Chunks)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	return &stats, nil
}
