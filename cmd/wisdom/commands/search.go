// ABOUTME: CLI command to semantically search the transcript corpus
// ABOUTME: Embeds the query and lists the closest chunks with their similarity
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search transcripts",
		Long: `Search transcript chunks by meaning.

The query is embedded with the configured model and compared against
every stored chunk. Only chunks above SEARCH_THRESHOLD are shown.

Examples:
  wisdom search "finding product-market fit"
  wisdom search --limit 10 "hiring senior leaders"
  wisdom search --format json "pricing"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	stack, err := newAdvisorStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	query := args[0]
	results, err := stack.service.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("searching transcripts: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		return printJSON(cmd, results)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tGUEST\tEPISODE\tTIME\tPREVIEW\n")
	fmt.Fprintf(w, "-----\t-----\t-------\t----\t-------\n")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%s\n",
			r.Similarity,
			truncate(r.GuestName, 20),
			truncate(r.EpisodeTitle, 30),
			r.TimestampStart,
			truncate(r.Content, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
