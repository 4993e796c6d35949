// ABOUTME: Main entry point for the standalone MCP server with stdio transport
// ABOUTME: Loads config, opens the store and model provider, and serves the advisor tools
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/harper/podcast-wisdom/internal/config"
	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/logging"
	"github.com/harper/podcast-wisdom/internal/mcp"
	"github.com/harper/podcast-wisdom/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var version = "dev"

func main() {
	// Load .env file if it exists (for API keys)
	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	logger, err := logging.Init(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		logrus.Fatalf("Invalid logging configuration: %v", err)
	}

	if err := cfg.RequireStore(); err != nil {
		logger.Fatal(err)
	}
	if err := cfg.RequireLLM(); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	provider, err := llm.NewProvider(ctx, cfg.LLMConfig())
	if err != nil {
		logger.Fatalf("Failed to initialize %s provider: %v", cfg.Provider, err)
	}
	defer provider.Close()

	service := advisor.NewService(store, provider, provider,
		advisor.WithThreshold(cfg.SearchThreshold),
		advisor.WithServiceLogger(logger),
	)
	server, _ := mcp.NewServer(service, version)

	logger.WithField("store", cfg.Store).Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("server error")
		}
	}
}
