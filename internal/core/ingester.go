// ABOUTME: Ingester walks episode directories and persists parsed, embedded chunks
// ABOUTME: Episodes are processed sequentially and one failure never stops the run
package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/models"
	"github.com/harper/podcast-wisdom/internal/storage"
)

// DefaultBatchSize is the number of chunk texts sent per embedding request
const DefaultBatchSize = 10

// EpisodeError records why one episode was skipped or failed
type EpisodeError struct {
	Slug string
	Err  error
}

// Report summarizes one ingestion run
type Report struct {
	RunID      string
	Discovered int
	Ingested   int
	Skipped    int
	Failed     int
	Chunks     int
	Duration   time.Duration
	Problems   []EpisodeError
}

// Ingester runs parse, embed and persist over a directory of episodes
type Ingester struct {
	store     storage.Writer
	embedder  llm.Embedder
	engine    *ChunkEngine
	guests    *GuestCache
	batchSize int
	dimension int
	dryRun    bool
	logger    logrus.FieldLogger
}

// Option configures an Ingester
type Option func(*Ingester)

// WithBatchSize sets how many chunks share one embedding request
func WithBatchSize(n int) Option {
	return func(in *Ingester) {
		if n > 0 {
			in.batchSize = n
		}
	}
}

// WithDimension rejects embeddings whose length differs from n
func WithDimension(n int) Option {
	return func(in *Ingester) { in.dimension = n }
}

// WithDryRun parses and packs without calling the embedder or the store
func WithDryRun(dryRun bool) Option {
	return func(in *Ingester) { in.dryRun = dryRun }
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(in *Ingester) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// NewIngester creates an Ingester. store and embedder may be nil in dry-run mode.
func NewIngester(store storage.Writer, embedder llm.Embedder, engine *ChunkEngine, opts ...Option) *Ingester {
	if engine == nil {
		engine = NewChunkEngine(DefaultTargetWords, DefaultMaxWords)
	}
	in := &Ingester{
		store:     store,
		embedder:  embedder,
		engine:    engine,
		guests:    NewGuestCache(),
		batchSize: DefaultBatchSize,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Guests exposes the run-scoped guest cache
func (in *Ingester) Guests() *GuestCache {
	return in.guests
}

// Discover lists episode directories under dir sorted by name, truncated to
// limit when limit is positive.
func Discover(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading episodes directory: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	if limit > 0 && len(dirs) > limit {
		dirs = dirs[:limit]
	}
	return dirs, nil
}

// Run ingests every episode directory under dir. It returns an error only when
// the directory cannot be listed or ctx is cancelled; per-episode problems are
// recorded in the report.
func (in *Ingester) Run(ctx context.Context, dir string, limit int) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := in.logger.WithField("run_id", report.RunID)

	if !in.dryRun && (in.store == nil || in.embedder == nil) {
		return report, errors.New("ingester needs a store and an embedder unless running dry")
	}

	slugs, err := Discover(dir, limit)
	if err != nil {
		return report, err
	}
	report.Discovered = len(slugs)
	in.guests.Clear()

	log.WithFields(logrus.Fields{"dir": dir, "episodes": len(slugs), "dry_run": in.dryRun}).Info("starting ingestion")

	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		epLog := log.WithField("slug", slug)

		ep, err := ParseEpisodeFile(filepath.Join(dir, slug, TranscriptFileName), in.engine)
		if err != nil {
			report.Skipped++
			report.Problems = append(report.Problems, EpisodeError{Slug: slug, Err: err})
			if errors.Is(err, fs.ErrNotExist) {
				epLog.Warn("no transcript found")
			} else {
				epLog.WithError(err).Warn("skipping unparseable transcript")
			}
			continue
		}

		if in.dryRun {
			report.Ingested++
			report.Chunks += len(ep.Chunks)
			epLog.WithField("chunks", len(ep.Chunks)).Debug("parsed episode")
			continue
		}

		if err := in.IngestEpisode(ctx, ep); err != nil {
			report.Failed++
			report.Problems = append(report.Problems, EpisodeError{Slug: slug, Err: err})
			epLog.WithError(err).Error("failed to ingest episode")
			continue
		}

		report.Ingested++
		report.Chunks += len(ep.Chunks)
		epLog.WithField("chunks", len(ep.Chunks)).Info("ingested episode")
	}

	report.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"ingested": report.Ingested,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
		"chunks":   report.Chunks,
	}).Info("ingestion complete")

	return report, nil
}

// IngestEpisode upserts the episode's guests, the episode, the guest links and
// every chunk with its embedding.
func (in *Ingester) IngestEpisode(ctx context.Context, ep *models.Episode) error {
	guestIDs, err := in.resolveGuests(ctx, ep)
	if err != nil {
		return err
	}

	episodeID, err := in.store.UpsertEpisode(ctx, ep)
	if err != nil {
		return err
	}
	ep.ID = episodeID

	for _, guestID := range guestIDs {
		if err := in.store.LinkEpisodeGuest(ctx, episodeID, guestID); err != nil {
			return err
		}
	}

	return in.upsertChunks(ctx, episodeID, ep.Chunks)
}

func (in *Ingester) resolveGuests(ctx context.Context, ep *models.Episode) ([]string, error) {
	var ids []string
	for _, name := range ParseGuestNames(ep.Guest) {
		slug := Slugify(name)
		if slug == "" {
			in.logger.WithFields(logrus.Fields{"slug": ep.Slug, "guest": name}).Warn("guest name has no slug, skipping")
			continue
		}

		if id, ok := in.guests.Get(slug); ok {
			ids = append(ids, id)
			continue
		}

		id, err := in.store.UpsertGuest(ctx, name, slug)
		if err != nil {
			return nil, err
		}
		in.guests.Put(slug, id)
		ids = append(ids, id)
	}
	return ids, nil
}

func (in *Ingester) upsertChunks(ctx context.Context, episodeID string, chunks []models.Chunk) error {
	for start := 0; start < len(chunks); start += in.batchSize {
		end := min(start+in.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := in.embedder.EmbedBatch(ctx, texts, llm.IntentDocument)
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding chunks %d-%d: %w: sent %d, got %d",
				start, end-1, llm.ErrEmbeddingCount, len(batch), len(vectors))
		}

		for i := range batch {
			batch[i].Embedding = vectors[i]
			if err := batch[i].ValidateEmbedding(in.dimension); err != nil {
				return err
			}
			if err := in.store.UpsertChunk(ctx, episodeID, batch[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
