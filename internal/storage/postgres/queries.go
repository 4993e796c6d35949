// ABOUTME: SQL text for the Postgres backend
// ABOUTME: Schema DDL, the search_chunks function and the episode listing builder
package postgres

import (
	"fmt"
	"strings"

	"github.com/harper/podcast-wisdom/internal/models"
)

const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS guests (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS episodes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    youtube_url TEXT NOT NULL DEFAULT '',
    video_id TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    duration_display TEXT NOT NULL DEFAULT '',
    view_count BIGINT NOT NULL DEFAULT 0,
    transcript_raw TEXT NOT NULL DEFAULT '',
    transcript_word_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS episode_guests (
    episode_id UUID NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
    guest_id UUID NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
    PRIMARY KEY (episode_id, guest_id)
);

CREATE TABLE IF NOT EXISTS transcript_chunks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    episode_id UUID NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
    chunk_index INTEGER NOT NULL,
    speaker TEXT NOT NULL DEFAULT '',
    timestamp_start TEXT NOT NULL DEFAULT '',
    timestamp_seconds INTEGER NOT NULL DEFAULT 0,
    content TEXT NOT NULL,
    word_count INTEGER NOT NULL DEFAULT 0,
    embedding vector(%[1]d),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (episode_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_chunks_embedding
    ON transcript_chunks USING hnsw (embedding vector_cosine_ops);

CREATE OR REPLACE FUNCTION search_chunks(
    query_embedding vector(%[1]d),
    match_threshold FLOAT,
    match_count INT
)
RETURNS TABLE (
    id UUID,
    content TEXT,
    speaker TEXT,
    timestamp_start TEXT,
    timestamp_seconds INTEGER,
    episode_title TEXT,
    episode_slug TEXT,
    guest_name TEXT,
    youtube_url TEXT,
    similarity FLOAT
)
LANGUAGE sql STABLE
AS $$
    SELECT
        c.id,
        c.content,
        c.speaker,
        c.timestamp_start,
        c.timestamp_seconds,
        e.title,
        e.slug,
        COALESCE((
            SELECT string_agg(g.name, ', ' ORDER BY g.name)
            FROM episode_guests eg JOIN guests g ON g.id = eg.guest_id
            WHERE eg.episode_id = e.id
        ), ''),
        e.youtube_url,
        1 - (c.embedding <=> query_embedding)
    FROM transcript_chunks c
    JOIN episodes e ON e.id = c.episode_id
    WHERE c.embedding IS NOT NULL
      AND 1 - (c.embedding <=> query_embedding) > match_threshold
    ORDER BY c.embedding <=> query_embedding
    LIMIT match_count;
$$;
`

func schemaSQL(dimension int) (string, error) {
	if dimension <= 0 {
		return "", fmt.Errorf("vector dimension must be positive, got %d", dimension)
	}
	return fmt.Sprintf(schemaTemplate, dimension), nil
}

const guestNamesExpr = `COALESCE((
	SELECT string_agg(g.name, ', ' ORDER BY g.name)
	FROM episode_guests eg JOIN guests g ON g.id = eg.guest_id
	WHERE eg.episode_id = e.id
), '')`

// listEpisodesQuery builds the listing SQL with numbered placeholders
func listEpisodesQuery(filter models.EpisodeFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := next("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(e.title ILIKE %s OR e.description ILIKE %s)", p, p))
	}
	if filter.Guest != "" {
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM episode_guests eg JOIN guests g ON g.id = eg.guest_id
			WHERE eg.episode_id = e.id AND g.name ILIKE %s
		)`, next("%"+filter.Guest+"%")))
	}

	var b strings.Builder
	b.WriteString(`SELECT e.id, e.slug, e.title, e.youtube_url, e.video_id, e.description,
	e.duration_seconds, e.duration_display, e.view_count,
	e.transcript_word_count, e.updated_at, ` + guestNamesExpr + `
FROM episodes e`)
	if len(where) > 0 {
		b.WriteString("\nWHERE " + strings.Join(where, " AND "))
	}
	b.WriteString("\nORDER BY " + orderColumn(filter.Sort) + " DESC, e.slug ASC")
	if filter.Limit > 0 {
		b.WriteString("\nLIMIT " + next(filter.Limit))
	}

	return b.String(), args
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
