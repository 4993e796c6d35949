// ABOUTME: CLI command to parse one transcript without touching any service
// ABOUTME: Shows metadata, guests and the chunks an ingest would embed
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/core"
	"github.com/harper/podcast-wisdom/internal/models"
)

var (
	parseTarget int
	parseMax    int
)

// NewParseCmd creates the parse command
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <episode-dir|transcript.md>",
		Short: "Parse a transcript and show its chunks",
		Long: `Parse a single episode transcript and print what ingestion would store.

Accepts an episode directory or a transcript file. Nothing is embedded
or written, so no credentials are needed.

Examples:
  wisdom parse episodes/brian-chesky
  wisdom parse --target 200 --max 300 episodes/brian-chesky/transcript.md
  wisdom parse --format json episodes/brian-chesky`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().IntVar(&parseTarget, "target", core.DefaultTargetWords, "Target words per chunk")
	cmd.Flags().IntVar(&parseMax, "max", core.DefaultMaxWords, "Maximum words before a turn is split")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(parseTarget, "target"); err != nil {
		return err
	}
	if err := validatePositiveInt(parseMax, "max"); err != nil {
		return err
	}

	path := args[0]
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, core.TranscriptFileName)
	}

	ep, err := core.ParseEpisodeFile(path, core.NewChunkEngine(parseTarget, parseMax))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if outputFormat == "json" {
		return printJSON(cmd, struct {
			*models.Episode
			Guests []string       `json:"guests"`
			Chunks []models.Chunk `json:"chunks"`
		}{ep, core.ParseGuestNames(ep.Guest), ep.Chunks})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Slug:     %s\n", ep.Slug)
	fmt.Fprintf(out, "Title:    %s\n", ep.Title)
	fmt.Fprintf(out, "Guests:   %v\n", core.ParseGuestNames(ep.Guest))
	fmt.Fprintf(out, "Duration: %s\n", ep.DurationDisplay)
	fmt.Fprintf(out, "Words:    %d\n", ep.TranscriptWordCount)
	fmt.Fprintf(out, "Chunks:   %d\n\n", len(ep.Chunks))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tTIME\tSPEAKER\tWORDS\tPREVIEW\n")
	fmt.Fprintf(w, "-\t----\t-------\t-----\t-------\n")
	for _, c := range ep.Chunks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", c.Index, c.TimestampStart, truncate(c.Speaker, 20), c.WordCount, truncate(c.Content, 60))
	}
	return w.Flush()
}
