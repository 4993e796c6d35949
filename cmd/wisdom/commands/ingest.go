// ABOUTME: CLI command to ingest a directory of episode transcripts
// ABOUTME: Parses, chunks, embeds and upserts every episode; --dry-run stops after chunking
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/core"
	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/storage"
)

var (
	ingestDir    string
	ingestLimit  int
	ingestDryRun bool
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest episode transcripts",
		Long: `Ingest episode transcripts into the configured store.

Each sub-directory of the episodes directory holds one episode's
transcript.md. Episodes are processed in name order; a broken episode
is reported and skipped without stopping the run. Re-running is safe:
every write is an upsert on the record's natural key.

Examples:
  wisdom ingest --dir ./episodes
  wisdom ingest --limit 5
  wisdom ingest --dry-run --format json`,
		Args: cobra.NoArgs,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestDir, "dir", "", "Episodes directory (default $EPISODES_PATH)")
	cmd.Flags().IntVar(&ingestLimit, "limit", 0, "Process at most this many episodes (0 = all)")
	cmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Parse and chunk only, without embedding or storing")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestLimit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", ingestLimit)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	dir := ingestDir
	if dir == "" {
		dir = cfg.EpisodesPath
	}
	limit := cfg.IngestLimit
	if cmd.Flags().Changed("limit") {
		limit = ingestLimit
	}

	var (
		store    storage.Writer
		embedder llm.Embedder
	)
	if !ingestDryRun {
		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s

		provider, err := openProvider(ctx, cfg)
		if err != nil {
			return err
		}
		defer provider.Close()

		e, release, err := newEmbedder(provider, cfg)
		if err != nil {
			return err
		}
		defer release()
		embedder = e
	}

	ingester := core.NewIngester(store, embedder,
		core.NewChunkEngine(cfg.ChunkTargetWords, cfg.ChunkMaxWords),
		core.WithBatchSize(cfg.EmbedBatchSize),
		core.WithDimension(cfg.VectorDimension),
		core.WithDryRun(ingestDryRun),
		core.WithLogger(logger),
	)

	report, runErr := ingester.Run(ctx, dir, limit)
	if report != nil && report.Discovered > 0 {
		if err := printReport(cmd, report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("ingestion stopped: %w", runErr)
	}
	return nil
}

type reportJSON struct {
	RunID      string            `json:"run_id"`
	DryRun     bool              `json:"dry_run"`
	Discovered int               `json:"discovered"`
	Ingested   int               `json:"ingested"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Chunks     int               `json:"chunks"`
	Seconds    float64           `json:"duration_seconds"`
	Problems   map[string]string `json:"problems,omitempty"`
}

func printReport(cmd *cobra.Command, r *core.Report) error {
	out := cmd.OutOrStdout()

	if outputFormat == "json" {
		payload := reportJSON{
			RunID:      r.RunID,
			DryRun:     ingestDryRun,
			Discovered: r.Discovered,
			Ingested:   r.Ingested,
			Skipped:    r.Skipped,
			Failed:     r.Failed,
			Chunks:     r.Chunks,
			Seconds:    r.Duration.Seconds(),
		}
		if len(r.Problems) > 0 {
			payload.Problems = make(map[string]string, len(r.Problems))
			for _, p := range r.Problems {
				payload.Problems[p.Slug] = p.Err.Error()
			}
		}
		return printJSON(cmd, payload)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DISCOVERED\tINGESTED\tSKIPPED\tFAILED\tCHUNKS\tDURATION\n")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", r.Discovered, r.Ingested, r.Skipped, r.Failed, r.Chunks, formatElapsed(r.Duration))
	w.Flush()

	if len(r.Problems) > 0 && !quiet {
		fmt.Fprintln(out, "\nProblems:")
		for _, p := range r.Problems {
			fmt.Fprintf(out, "  %s: %s\n", p.Slug, truncate(p.Err.Error(), 100))
		}
	}
	return nil
}
