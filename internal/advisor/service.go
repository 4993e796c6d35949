// ABOUTME: Advisor service answering tool calls from the embedded transcript corpus
// ABOUTME: Retrieval-backed tools search chunks, then synthesize an answer with the generator
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/models"
	"github.com/harper/podcast-wisdom/internal/storage"
	"github.com/sirupsen/logrus"
)

// DefaultThreshold is the minimum similarity for a chunk to count as relevant
const DefaultThreshold = 0.5

// Result limits per tool
const (
	adviceMatches   = 8
	compareMatches  = 15
	playbookMatches = 10
	metricsMatches  = 8
)

// ErrUpstream marks failures of the store or model services, as opposed to bad input
var ErrUpstream = errors.New("upstream failure")

// Service dispatches validated requests
type Service struct {
	store     storage.Reader
	embedder  llm.Embedder
	generator llm.Generator
	threshold float64
	logger    logrus.FieldLogger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithThreshold sets the similarity threshold for searches
func WithThreshold(threshold float64) ServiceOption {
	return func(s *Service) {
		s.threshold = threshold
	}
}

// WithServiceLogger sets the logger
func WithServiceLogger(logger logrus.FieldLogger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service over a store reader and model clients
func NewService(store storage.Reader, embedder llm.Embedder, generator llm.Generator, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		embedder:  embedder,
		generator: generator,
		threshold: DefaultThreshold,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Call parses raw arguments for the named tool and dispatches it
func (s *Service) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	req, err := ParseRequest(name, args)
	if err != nil {
		return "", err
	}
	return s.Dispatch(ctx, req)
}

// Dispatch runs a typed request and returns the text answer
func (s *Service) Dispatch(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	log := s.logger.WithField("tool", req.ToolName())

	var (
		text string
		err  error
	)
	switch r := req.(type) {
	case SearchWisdomRequest:
		text, err = s.searchWisdom(ctx, r)
	case GetAdviceRequest:
		text, err = s.getAdvice(ctx, r)
	case CompareExpertsRequest:
		text, err = s.compareExperts(ctx, r)
	case GeneratePlaybookRequest:
		text, err = s.generatePlaybook(ctx, r)
	case FindMetricsRequest:
		text, err = s.findMetrics(ctx, r)
	case ListEpisodesRequest:
		text, err = s.listEpisodes(ctx, r)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, req.ToolName())
	}

	if err != nil {
		log.WithError(err).Warn("tool call failed")
		return "", err
	}
	log.WithField("elapsed", time.Since(start)).Debug("tool call completed")
	return text, nil
}

// Search embeds query with the query intent and returns relevant chunks
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.ChunkMatch, error) {
	vector, err := llm.EmbedOne(ctx, s.embedder, query, llm.IntentQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", ErrUpstream, err)
	}
	matches, err := s.store.SearchChunks(ctx, vector, s.threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search chunks: %w", ErrUpstream, err)
	}
	return matches, nil
}

func (s *Service) synthesize(ctx context.Context, question string, matches []models.ChunkMatch) (string, error) {
	answer, err := s.generator.Generate(ctx, SynthesisPrompt(question, matches))
	if err != nil {
		return "", fmt.Errorf("%w: generate: %w", ErrUpstream, err)
	}
	return answer, nil
}

func (s *Service) searchWisdom(ctx context.Context, r SearchWisdomRequest) (string, error) {
	matches, err := s.Search(ctx, r.Query, r.Limit)
	if err != nil {
		return "", err
	}
	return FormatMatches(matches), nil
}

func (s *Service) getAdvice(ctx context.Context, r GetAdviceRequest) (string, error) {
	query := strings.TrimSpace(r.Challenge + " " + r.Context)
	matches, err := s.Search(ctx, query, adviceMatches)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return NoAdviceInsights, nil
	}
	return s.synthesize(ctx, r.Challenge, matches)
}

func (s *Service) compareExperts(ctx context.Context, r CompareExpertsRequest) (string, error) {
	matches, err := s.Search(ctx, r.Topic, compareMatches)
	if err != nil {
		return "", err
	}
	matches = FilterByExperts(matches, r.Experts)
	if len(matches) == 0 {
		return NoExpertViewpoints, nil
	}
	return s.synthesize(ctx, comparisonQuestion(r.Topic), matches)
}

func (s *Service) generatePlaybook(ctx context.Context, r GeneratePlaybookRequest) (string, error) {
	query := fmt.Sprintf("how to %s best practices steps", r.Goal)
	matches, err := s.Search(ctx, query, playbookMatches)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return NoPlaybookInsights, nil
	}
	return s.synthesize(ctx, playbookQuestion(r.Goal, r.Constraints), matches)
}

func (s *Service) findMetrics(ctx context.Context, r FindMetricsRequest) (string, error) {
	query := strings.TrimSpace(fmt.Sprintf("%s metrics KPIs benchmarks %s", r.Category, r.Context))
	matches, err := s.Search(ctx, query, metricsMatches)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return NoMetrics, nil
	}
	return s.synthesize(ctx, metricsQuestion(r.Category, r.Context), matches)
}

func (s *Service) listEpisodes(ctx context.Context, r ListEpisodesRequest) (string, error) {
	episodes, err := s.store.ListEpisodes(ctx, models.EpisodeFilter{
		Guest:  r.Guest,
		Search: r.Search,
		Sort:   r.Sort,
		Limit:  r.Limit,
	})
	if err != nil {
		return "", fmt.Errorf("%w: list episodes: %w", ErrUpstream, err)
	}
	return FormatEpisodes(episodes), nil
}

// FilterByExperts keeps matches whose guest name contains any of experts,
// ignoring case. An empty experts list keeps everything.
func FilterByExperts(matches []models.ChunkMatch, experts []string) []models.ChunkMatch {
	if len(experts) == 0 {
		return matches
	}
	kept := make([]models.ChunkMatch, 0, len(matches))
	for _, m := range matches {
		guest := strings.ToLower(m.GuestName)
		for _, expert := range experts {
			if strings.Contains(guest, strings.ToLower(expert)) {
				kept = append(kept, m)
				break
			}
		}
	}
	return kept
}
