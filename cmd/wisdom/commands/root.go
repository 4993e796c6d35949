// ABOUTME: Root command and global flags for the wisdom CLI
// ABOUTME: Wires every subcommand and validates the shared output flags
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
██╗    ██╗██╗███████╗██████╗  ██████╗ ███╗   ███╗
██║    ██║██║██╔════╝██╔══██╗██╔═══██╗████╗ ████║
██║ █╗ ██║██║███████╗██║  ██║██║   ██║██╔████╔██║
██║███╗██║██║╚════██║██║  ██║██║   ██║██║╚██╔╝██║
╚███╔███╔╝██║███████║██████╔╝╚██████╔╝██║ ╚═╝ ██║
 ╚══╝╚══╝ ╚═╝╚══════╝╚═════╝  ╚═════╝ ╚═╝     ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wisdom",
		Short: "Ingest podcast transcripts and ask the experts",
		Long: banner + `

Wisdom turns a directory of podcast transcripts into an embedded,
searchable corpus and serves advisory tools over it.

Ingest transcripts with "wisdom ingest", then query them from the
command line, over MCP ("wisdom mcp") or over HTTP ("wisdom serve").`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "table", "json":
				return nil
			default:
				return fmt.Errorf("--format must be auto, table or json, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (default $WISDOM_CONFIG)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewIngestCmd(),
		NewParseCmd(),
		NewSearchCmd(),
		NewBenchCmd(),
		NewToolCmd(),
		NewEpisodesCmd(),
		NewStatsCmd(),
		NewMCPCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
