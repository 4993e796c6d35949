// ABOUTME: Benchmark runner for retrieval scenarios against the advisor search path
// ABOUTME: Runs each scenario query, scores the matches and exports results as JSON

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/harper/podcast-wisdom/internal/models"
)

// Searcher is the retrieval path under test; advisor.Service satisfies it
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.ChunkMatch, error)
}

// BenchmarkRunner executes retrieval benchmark scenarios
type BenchmarkRunner struct {
	searcher Searcher
	metrics  *MetricsCalculator
	out      io.Writer
	verbose  bool
	logger   logrus.FieldLogger
}

// RunnerOption configures a BenchmarkRunner
type RunnerOption func(*BenchmarkRunner)

// WithVerbose writes per-scenario progress to w
func WithVerbose(w io.Writer) RunnerOption {
	return func(r *BenchmarkRunner) {
		r.out = w
		r.verbose = w != nil
	}
}

// WithMetrics replaces the default metrics calculator
func WithMetrics(m *MetricsCalculator) RunnerOption {
	return func(r *BenchmarkRunner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithRunnerLogger sets the logger
func WithRunnerLogger(logger logrus.FieldLogger) RunnerOption {
	return func(r *BenchmarkRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewBenchmarkRunner creates a runner over the given search path
func NewBenchmarkRunner(searcher Searcher, opts ...RunnerOption) *BenchmarkRunner {
	r := &BenchmarkRunner{
		searcher: searcher,
		metrics:  NewMetricsCalculator(DefaultPassThreshold),
		out:      io.Discard,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunTest executes a single scenario
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	limit := scenario.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	if r.verbose {
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "  Query: %s (limit %d)\n", scenario.Query, limit)
	}

	matches, err := r.searcher.Search(ctx, scenario.Query, limit)
	if err != nil {
		return TestResult{}, fmt.Errorf("scenario %s: %w", scenario.ID, err)
	}

	result := r.metrics.EvaluateTest(scenario, matches)
	r.logger.WithFields(logrus.Fields{
		"scenario":       scenario.ID,
		"matches":        len(matches),
		"faithfulness":   result.FaithfulnessScore,
		"context_recall": result.ContextRecallScore,
		"status":         result.Status,
	}).Debug("benchmark scenario evaluated")

	if r.verbose {
		fmt.Fprintf(r.out, "  Faithfulness: %.2f  Context Recall: %.2f  %s\n",
			result.FaithfulnessScore, result.ContextRecallScore, result.Status)
	}
	return result, nil
}

// RunAllTests executes every scenario. A scenario that errors is recorded as a
// failed result; only context cancellation stops the run.
func (r *BenchmarkRunner) RunAllTests(ctx context.Context, scenarios []TestScenario) ([]TestResult, error) {
	results := make([]TestResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			r.logger.WithError(err).WithField("scenario", scenario.ID).Warn("benchmark scenario failed")
			result = TestResult{
				TestID:       scenario.ID,
				TestName:     scenario.Name,
				Status:       StatusFail,
				ErrorMessage: err.Error(),
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Summary aggregates a set of results
type Summary struct {
	Total            int     `json:"total"`
	Passed           int     `json:"passed"`
	Failed           int     `json:"failed"`
	MeanFaithfulness float64 `json:"mean_faithfulness"`
	MeanRecall       float64 `json:"mean_context_recall"`
}

// Summarize computes pass counts and mean scores
func Summarize(results []TestResult) Summary {
	s := Summary{Total: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, result := range results {
		if result.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		s.MeanFaithfulness += result.FaithfulnessScore
		s.MeanRecall += result.ContextRecallScore
	}
	s.MeanFaithfulness /= float64(len(results))
	s.MeanRecall /= float64(len(results))
	return s
}

// ExportResults writes results and their summary as indented JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	payload := struct {
		Summary Summary      `json:"summary"`
		Results []TestResult `json:"results"`
	}{Summarize(results), results}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
