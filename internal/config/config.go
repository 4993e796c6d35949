// ABOUTME: Centralized configuration for ingestion and the advisor servers
// ABOUTME: Layers defaults, an optional TOML file and environment variables, then validates
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/storage"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// ErrMissingCredentials is returned when the selected store or model provider
// has no credentials configured
var ErrMissingCredentials = errors.New("missing credentials")

// ConfigFileEnv names the variable holding the optional TOML config path
const ConfigFileEnv = "WISDOM_CONFIG"

// Config holds all configuration for the wisdom system
type Config struct {
	// Store settings
	Store       storage.Backend
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string
	SQLitePath  string

	// Model provider settings
	Provider       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Ingestion settings
	VectorDimension  int
	ChunkTargetWords int
	ChunkMaxWords    int
	EmbedBatchSize   int
	EmbedWorkers     int
	EpisodesPath     string
	IngestLimit      int

	// Retrieval settings
	SearchThreshold float64

	// Surfaces
	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Store:            storage.BackendSupabase,
		Provider:         llm.ProviderGemini,
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		RetryDelay:       2 * time.Second,
		VectorDimension:  768,
		ChunkTargetWords: 400,
		ChunkMaxWords:    600,
		EmbedBatchSize:   10,
		EmbedWorkers:     1,
		EpisodesPath:     "episodes",
		SearchThreshold:  0.5,
		HTTPAddr:         ":8080",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// fileConfig is the TOML layout. Durations are strings like "30s".
type fileConfig struct {
	Store    string `toml:"store"`
	Supabase struct {
		URL string `toml:"url"`
		Key string `toml:"key"`
	} `toml:"supabase"`
	Postgres struct {
		URL string `toml:"url"`
	} `toml:"postgres"`
	SQLite struct {
		Path string `toml:"path"`
	} `toml:"sqlite"`
	LLM struct {
		Provider       string `toml:"provider"`
		GeminiAPIKey   string `toml:"gemini_api_key"`
		OpenAIAPIKey   string `toml:"openai_api_key"`
		BaseURL        string `toml:"base_url"`
		Model          string `toml:"model"`
		EmbeddingModel string `toml:"embedding_model"`
		Timeout        string `toml:"timeout"`
		MaxRetries     *int   `toml:"max_retries"`
		RetryDelay     string `toml:"retry_delay"`
	} `toml:"llm"`
	Ingest struct {
		EpisodesPath    string `toml:"episodes_path"`
		Limit           *int   `toml:"limit"`
		VectorDimension int    `toml:"vector_dimension"`
		ChunkTarget     int    `toml:"chunk_target_words"`
		ChunkMax        int    `toml:"chunk_max_words"`
		BatchSize       int    `toml:"embed_batch_size"`
		Workers         int    `toml:"embed_workers"`
	} `toml:"ingest"`
	Search struct {
		Threshold *float64 `toml:"threshold"`
	} `toml:"search"`
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// LoadDotEnv loads variables from .env files without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the file named by WISDOM_CONFIG, if any, and
// environment variables
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile reads configuration from path (skipped when empty), then applies
// environment overrides and validates
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var f fileConfig
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}

	setString(&c.SupabaseURL, f.Supabase.URL)
	setString(&c.SupabaseKey, f.Supabase.Key)
	setString(&c.DatabaseURL, f.Postgres.URL)
	setString(&c.SQLitePath, f.SQLite.Path)
	if f.Store != "" {
		c.Store = storage.Backend(f.Store)
	}

	setString(&c.Provider, f.LLM.Provider)
	setString(&c.GeminiAPIKey, f.LLM.GeminiAPIKey)
	setString(&c.OpenAIAPIKey, f.LLM.OpenAIAPIKey)
	setString(&c.OpenAIBaseURL, f.LLM.BaseURL)
	setString(&c.ChatModel, f.LLM.Model)
	setString(&c.EmbeddingModel, f.LLM.EmbeddingModel)
	if err := setDuration(&c.Timeout, "llm.timeout", f.LLM.Timeout); err != nil {
		return err
	}
	if err := setDuration(&c.RetryDelay, "llm.retry_delay", f.LLM.RetryDelay); err != nil {
		return err
	}
	if f.LLM.MaxRetries != nil {
		c.MaxRetries = *f.LLM.MaxRetries
	}

	setString(&c.EpisodesPath, f.Ingest.EpisodesPath)
	if f.Ingest.Limit != nil {
		c.IngestLimit = *f.Ingest.Limit
	}
	setInt(&c.VectorDimension, f.Ingest.VectorDimension)
	setInt(&c.ChunkTargetWords, f.Ingest.ChunkTarget)
	setInt(&c.ChunkMaxWords, f.Ingest.ChunkMax)
	setInt(&c.EmbedBatchSize, f.Ingest.BatchSize)
	setInt(&c.EmbedWorkers, f.Ingest.Workers)

	if f.Search.Threshold != nil {
		c.SearchThreshold = *f.Search.Threshold
	}
	setString(&c.HTTPAddr, f.Server.Addr)
	setString(&c.LogLevel, f.Log.Level)
	setString(&c.LogFormat, f.Log.Format)
	return nil
}

func (c *Config) applyEnv() {
	c.Store = storage.Backend(strings.ToLower(getEnv("WISDOM_STORE", string(c.Store))))
	c.SupabaseURL = getEnv("SUPABASE_URL", getEnv("NEXT_PUBLIC_SUPABASE_URL", c.SupabaseURL))
	c.SupabaseKey = getEnv("SUPABASE_KEY", getEnv("NEXT_PUBLIC_SUPABASE_PUBLISHABLE_DEFAULT_KEY", c.SupabaseKey))
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = getEnv("WISDOM_SQLITE_PATH", c.SQLitePath)

	c.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.Provider))
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", getEnv("GEMIMI_API_KEY", c.GeminiAPIKey))
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.ChatModel = getEnv("LLM_MODEL", c.ChatModel)
	c.EmbeddingModel = getEnv("EMBEDDING_MODEL", c.EmbeddingModel)
	c.Timeout = getEnvDuration("LLM_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("LLM_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("LLM_RETRY_DELAY", c.RetryDelay)

	c.VectorDimension = getEnvInt("VECTOR_DIMENSION", c.VectorDimension)
	c.ChunkTargetWords = getEnvInt("CHUNK_TARGET_WORDS", c.ChunkTargetWords)
	c.ChunkMaxWords = getEnvInt("CHUNK_MAX_WORDS", c.ChunkMaxWords)
	c.EmbedBatchSize = getEnvInt("EMBED_BATCH_SIZE", c.EmbedBatchSize)
	c.EmbedWorkers = getEnvInt("EMBED_WORKERS", c.EmbedWorkers)
	c.EpisodesPath = getEnv("EPISODES_PATH", c.EpisodesPath)
	c.IngestLimit = getEnvInt("INGEST_LIMIT", c.IngestLimit)

	c.SearchThreshold = getEnvFloat("SEARCH_THRESHOLD", c.SearchThreshold)
	c.HTTPAddr = getEnv("WISDOM_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", c.LogFormat))
}

// Validate checks ranges. Credentials are checked separately since parsing
// and dry runs need none.
func (c *Config) Validate() error {
	if !c.Store.IsValid() {
		return fmt.Errorf("WISDOM_STORE must be supabase, postgres or sqlite, got %q", c.Store)
	}
	if c.Provider != llm.ProviderGemini && c.Provider != llm.ProviderOpenAI {
		return fmt.Errorf("LLM_PROVIDER must be gemini or openai, got %q", c.Provider)
	}
	if c.SearchThreshold < 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be 0-1, got %f", c.SearchThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("LLM_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.ChunkTargetWords <= 0 || c.ChunkMaxWords <= 0 {
		return fmt.Errorf("chunk sizes must be positive, got target %d max %d", c.ChunkTargetWords, c.ChunkMaxWords)
	}
	if c.ChunkTargetWords > c.ChunkMaxWords {
		return fmt.Errorf("CHUNK_TARGET_WORDS (%d) must not exceed CHUNK_MAX_WORDS (%d)", c.ChunkTargetWords, c.ChunkMaxWords)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	if c.EmbedWorkers <= 0 {
		return fmt.Errorf("EMBED_WORKERS must be positive, got %d", c.EmbedWorkers)
	}
	if c.IngestLimit < 0 {
		return fmt.Errorf("INGEST_LIMIT must not be negative, got %d", c.IngestLimit)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// RequireStore checks the selected backend has what it needs to connect
func (c *Config) RequireStore() error {
	switch c.Store {
	case storage.BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("%w: SUPABASE_URL and SUPABASE_KEY are required for the supabase store", ErrMissingCredentials)
		}
	case storage.BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres store", ErrMissingCredentials)
		}
	}
	return nil
}

// RequireLLM checks the selected provider has an API key
func (c *Config) RequireLLM() error {
	if c.APIKey() == "" {
		key := "GEMINI_API_KEY"
		if c.Provider == llm.ProviderOpenAI {
			key = "OPENAI_API_KEY"
		}
		return fmt.Errorf("%w: %s is required for the %s provider", ErrMissingCredentials, key, c.Provider)
	}
	return nil
}

// APIKey returns the key for the selected provider
func (c *Config) APIKey() string {
	if c.Provider == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// StorageOptions converts the store settings for storage.Open
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:      c.Store,
		SupabaseURL:  c.SupabaseURL,
		SupabaseKey:  c.SupabaseKey,
		DatabaseURL:  c.DatabaseURL,
		SQLitePath:   c.SQLitePath,
		Dimension:    c.VectorDimension,
		EnsureSchema: c.Store == storage.BackendPostgres,
	}
}

// LLMConfig converts the provider settings for llm.NewProvider
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider:       c.Provider,
		APIKey:         c.APIKey(),
		ChatModel:      c.ChatModel,
		EmbeddingModel: c.EmbeddingModel,
		Dimension:      c.VectorDimension,
		BaseURL:        c.OpenAIBaseURL,
		Retry: llm.RetryConfig{
			MaxRetries: c.MaxRetries,
			RetryDelay: c.RetryDelay,
			Timeout:    c.Timeout,
		},
	}
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
