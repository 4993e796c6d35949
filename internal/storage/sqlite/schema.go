// ABOUTME: SQLite schema for the transcript corpus
// ABOUTME: Mirrors the hosted tables; embeddings are little-endian float32 BLOBs
package sqlite

import "errors"

// Schema contains all SQL statements for database initialization
const Schema = `
CREATE TABLE IF NOT EXISTS guests (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS episodes (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    youtube_url TEXT NOT NULL DEFAULT '',
    video_id TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    duration_display TEXT NOT NULL DEFAULT '',
    view_count INTEGER NOT NULL DEFAULT 0,
    transcript_raw TEXT NOT NULL DEFAULT '',
    transcript_word_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS episode_guests (
    episode_id TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
    guest_id TEXT NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
    PRIMARY KEY (episode_id, guest_id)
);

CREATE TABLE IF NOT EXISTS transcript_chunks (
    id TEXT PRIMARY KEY,
    episode_id TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
    chunk_index INTEGER NOT NULL,
    speaker TEXT NOT NULL DEFAULT '',
    timestamp_start TEXT NOT NULL DEFAULT '',
    timestamp_seconds INTEGER NOT NULL DEFAULT 0,
    content TEXT NOT NULL,
    word_count INTEGER NOT NULL DEFAULT 0,
    embedding BLOB,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (episode_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_episode_guests_guest ON episode_guests(guest_id);
CREATE INDEX IF NOT EXISTS idx_chunks_episode ON transcript_chunks(episode_id);
`

// SchemaVersion is stored in PRAGMA user_version
const SchemaVersion = 1

// ErrSchemaTooNew means the database was written by a newer schema
var ErrSchemaTooNew = errors.New("database schema is newer than supported")
