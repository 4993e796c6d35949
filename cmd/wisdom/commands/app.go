// ABOUTME: Shared setup for commands: config, logging, store, model provider and advisor
// ABOUTME: Each constructor fails fast with ErrMissingCredentials when its settings are absent
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/harper/podcast-wisdom/internal/config"
	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/logging"
	"github.com/harper/podcast-wisdom/internal/storage"
)

// loadConfig reads .env, the config file and the environment, then configures logging
func loadConfig() (*config.Config, *logrus.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	path := configPath
	if path == "" {
		path = os.Getenv(config.ConfigFileEnv)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "warn"
	}
	logger, err := logging.Init(logging.Options{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func openProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, cfg.LLMConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return provider, nil
}

// newEmbedder wraps the provider in a worker pool when more than one worker is
// configured. The returned release func is always safe to call.
func newEmbedder(provider llm.Embedder, cfg *config.Config) (llm.Embedder, func(), error) {
	if cfg.EmbedWorkers <= 1 {
		return provider, func() {}, nil
	}
	chunk := (cfg.EmbedBatchSize + cfg.EmbedWorkers - 1) / cfg.EmbedWorkers
	pooled, err := llm.NewPooledEmbedder(provider, cfg.EmbedWorkers, chunk)
	if err != nil {
		return nil, nil, err
	}
	return pooled, pooled.Release, nil
}

// advisorStack bundles everything the tool surfaces need
type advisorStack struct {
	cfg      *config.Config
	logger   *logrus.Logger
	store    storage.Store
	provider llm.Provider
	service  *advisor.Service
}

func newAdvisorStack(ctx context.Context) (*advisorStack, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	provider, err := openProvider(ctx, cfg)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			logger.WithError(cerr).Warn("error closing storage")
		}
		return nil, err
	}

	service := advisor.NewService(store, provider, provider,
		advisor.WithThreshold(cfg.SearchThreshold),
		advisor.WithServiceLogger(logger),
	)
	return &advisorStack{cfg: cfg, logger: logger, store: store, provider: provider, service: service}, nil
}

func (s *advisorStack) Close() {
	if err := s.provider.Close(); err != nil {
		s.logger.WithError(err).Warn("error closing model provider")
	}
	if err := s.store.Close(); err != nil {
		s.logger.WithError(err).Warn("error closing storage")
	}
}
