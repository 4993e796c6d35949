// ABOUTME: CLI commands to browse stored episodes and table counts
// ABOUTME: Read-only; needs store credentials but no model provider
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/harper/podcast-wisdom/internal/models"
)

var (
	episodesGuest  string
	episodesSearch string
	episodesSort   string
	episodesLimit  int
)

// NewEpisodesCmd creates the episodes command
func NewEpisodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List ingested episodes",
		Long: `List ingested episodes, optionally filtered by guest or text.

Examples:
  wisdom episodes
  wisdom episodes --guest "Elena Verna"
  wisdom episodes --search growth --sort duration --limit 20`,
		Args: cobra.NoArgs,
		RunE: runEpisodes,
	}

	cmd.Flags().StringVar(&episodesGuest, "guest", "", "Filter by guest name")
	cmd.Flags().StringVar(&episodesSearch, "search", "", "Filter by title or description")
	cmd.Flags().StringVar(&episodesSort, "sort", string(models.SortByViews), "Sort by views, duration or recent")
	cmd.Flags().IntVar(&episodesLimit, "limit", 10, "Maximum episodes to return")

	return cmd
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	sort := models.EpisodeSort(episodesSort)
	if !sort.IsValid() {
		return fmt.Errorf("sort must be views, duration or recent, got %q", episodesSort)
	}
	if err := validatePositiveInt(episodesLimit, "limit"); err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	episodes, err := store.ListEpisodes(ctx, models.EpisodeFilter{
		Guest:  episodesGuest,
		Search: episodesSearch,
		Sort:   sort,
		Limit:  episodesLimit,
	})
	if err != nil {
		return fmt.Errorf("listing episodes: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(cmd, episodes)
	}
	if len(episodes) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), advisor.NoEpisodes)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TITLE\tGUEST\tDURATION\tVIEWS\tSLUG\n")
	fmt.Fprintf(w, "-----\t-----\t--------\t-----\t----\n")
	for _, ep := range episodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(ep.Title, 40),
			truncate(ep.Guest, 25),
			ep.DurationDisplay,
			advisor.Thousands(ep.ViewCount),
			ep.Slug)
	}
	return w.Flush()
}

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per table",
		Long:  `Show how many guests, episodes, guest links and chunks the store holds.`,
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(cmd, stats)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Store:\t%s\n", cfg.Store)
	fmt.Fprintf(w, "Guests:\t%d\n", stats.Guests)
	fmt.Fprintf(w, "Episodes:\t%d\n", stats.Episodes)
	fmt.Fprintf(w, "Guest links:\t%d\n", stats.EpisodeGuests)
	fmt.Fprintf(w, "Chunks:\t%d\n", stats.Chunks)
	return w.Flush()
}
