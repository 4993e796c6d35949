// ABOUTME: Store port shared by ingestion and the advisor tools
// ABOUTME: Open selects the Supabase, Postgres or SQLite backend from Options
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/podcast-wisdom/internal/models"
	"github.com/harper/podcast-wisdom/internal/storage/postgres"
	"github.com/harper/podcast-wisdom/internal/storage/sqlite"
	"github.com/harper/podcast-wisdom/internal/storage/supabase"
)

// Writer persists parsed episodes. Every method is an upsert on the entity's
// natural key so re-running an ingestion never duplicates rows.
type Writer interface {
	// UpsertGuest keys on slug and returns the guest ID
	UpsertGuest(ctx context.Context, name, slug string) (string, error)
	// UpsertEpisode keys on episode slug and returns the episode ID
	UpsertEpisode(ctx context.Context, ep *models.Episode) (string, error)
	// LinkEpisodeGuest keys on (episode, guest)
	LinkEpisodeGuest(ctx context.Context, episodeID, guestID string) error
	// UpsertChunk keys on (episode, chunk index)
	UpsertChunk(ctx context.Context, episodeID string, chunk models.Chunk) error
}

// Reader serves the advisor tools
type Reader interface {
	// SearchChunks returns at most limit chunks whose similarity to the query
	// vector exceeds threshold, best match first
	SearchChunks(ctx context.Context, query []float32, threshold float64, limit int) ([]models.ChunkMatch, error)
	ListEpisodes(ctx context.Context, filter models.EpisodeFilter) ([]models.Episode, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// Store is a full backend
type Store interface {
	Writer
	Reader
	Close() error
}

// Backend names a Store implementation
type Backend string

const (
	BackendSupabase Backend = "supabase"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// IsValid reports whether b names a known backend
func (b Backend) IsValid() bool {
	switch b {
	case BackendSupabase, BackendPostgres, BackendSQLite:
		return true
	}
	return false
}

// ErrUnknownBackend is returned by Open for an unrecognized backend name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Options configures Open
type Options struct {
	Backend     Backend
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string
	SQLitePath  string
	// Dimension sizes the vector column when Postgres creates its schema
	Dimension int
	// EnsureSchema creates Postgres tables and the search function on open
	EnsureSchema bool
}

var (
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
	_ Store = (*supabase.Store)(nil)
)

// Open connects to the configured backend
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendSupabase:
		store, err := supabase.New(opts.SupabaseURL, opts.SupabaseKey)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendPostgres:
		store, err := postgres.Open(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if opts.EnsureSchema {
			if err := store.EnsureSchema(ctx, opts.Dimension); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return store, nil
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = sqlite.DefaultDBPath()
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
