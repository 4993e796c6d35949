// ABOUTME: CLI command to benchmark retrieval quality against known scenarios
// ABOUTME: Runs RAGAS-style faithfulness and context recall scoring over semantic search
package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/benchmarks/ragas"
)

var (
	benchScenarios string
	benchTest      string
	benchOutput    string
	benchThreshold float64
)

// errBenchFailed is returned when at least one scenario fails
var errBenchFailed = errors.New("benchmark failed")

// NewBenchCmd creates bench command
func NewBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark retrieval quality",
		Long: `Run retrieval benchmark scenarios against the ingested corpus.

Each scenario is a search query with the guests and phrases it should
surface. Faithfulness scores whether the expected guests (and none of
the forbidden ones) were retrieved; context recall scores how many
expected phrases appear in the excerpts. A scenario passes when both
reach --threshold.

Without --scenarios the built-in suite is used. Scenario files are YAML:

  scenarios:
    - id: pricing
      query: willingness to pay
      limit: 5
      ground_truth:
        expected_guests: [Madhavan Ramanujam]
        expected_context: [willingness to pay]

Examples:
  wisdom bench
  wisdom bench --test pricing
  wisdom bench --scenarios bench.yaml --output results/bench.json`,
		Args: cobra.NoArgs,
		RunE: runBench,
	}

	cmd.Flags().StringVar(&benchScenarios, "scenarios", "", "YAML scenario file (default: built-in suite)")
	cmd.Flags().StringVar(&benchTest, "test", "", "Run only the scenario with this id")
	cmd.Flags().StringVar(&benchOutput, "output", "", "Write JSON results to this path")
	cmd.Flags().Float64Var(&benchThreshold, "threshold", ragas.DefaultPassThreshold, "Score both metrics must reach to pass")

	return cmd
}

func selectScenarios() ([]ragas.TestScenario, error) {
	scenarios := ragas.DefaultScenarios()
	if benchScenarios != "" {
		loaded, err := ragas.LoadScenarios(benchScenarios)
		if err != nil {
			return nil, err
		}
		scenarios = loaded
	}
	if benchTest == "" {
		return scenarios, nil
	}
	scenario, ok := ragas.FindScenario(scenarios, benchTest)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", benchTest)
	}
	return []ragas.TestScenario{scenario}, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchThreshold <= 0 || benchThreshold > 1 {
		return fmt.Errorf("--threshold must be in (0, 1], got %v", benchThreshold)
	}
	scenarios, err := selectScenarios()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	stack, err := newAdvisorStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	opts := []ragas.RunnerOption{
		ragas.WithMetrics(ragas.NewMetricsCalculator(benchThreshold)),
		ragas.WithRunnerLogger(stack.logger),
	}
	if verbose && outputFormat != "json" {
		opts = append(opts, ragas.WithVerbose(cmd.ErrOrStderr()))
	}
	runner := ragas.NewBenchmarkRunner(stack.service, opts...)

	results, err := runner.RunAllTests(ctx, scenarios)
	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	if benchOutput != "" {
		if err := runner.ExportResults(results, benchOutput); err != nil {
			return err
		}
	}

	summary := ragas.Summarize(results)
	if outputFormat == "json" {
		if err := printJSON(cmd, map[string]any{"summary": summary, "results": results}); err != nil {
			return err
		}
	} else {
		printBench(cmd, results, summary)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d scenarios failed", errBenchFailed, summary.Failed, summary.Total)
	}
	return nil
}

func printBench(cmd *cobra.Command, results []ragas.TestResult, summary ragas.Summary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tFAITHFULNESS\tRECALL\tSTATUS\tNOTE\n")
	fmt.Fprintf(w, "--\t------------\t------\t------\t----\n")
	for _, r := range results {
		note := r.ErrorMessage
		if note == "" && !r.Passed() {
			note, _ = r.Details["faithfulness_detail"].(string)
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\t%s\n",
			r.TestID, r.FaithfulnessScore, r.ContextRecallScore, r.Status, truncate(note, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nPassed %d of %d (faithfulness %.2f, recall %.2f)\n",
			summary.Passed, summary.Total, summary.MeanFaithfulness, summary.MeanRecall)
	}
}
