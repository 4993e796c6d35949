// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies defaults, TOML file layering, environment overrides and validation
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/podcast-wisdom/internal/llm"
	"github.com/harper/podcast-wisdom/internal/storage"
)

var allKeys = []string{
	ConfigFileEnv, "WISDOM_STORE", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_KEY",
	"NEXT_PUBLIC_SUPABASE_PUBLISHABLE_DEFAULT_KEY", "DATABASE_URL", "WISDOM_SQLITE_PATH",
	"LLM_PROVIDER", "GEMINI_API_KEY", "GEMIMI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	"LLM_MODEL", "EMBEDDING_MODEL", "LLM_TIMEOUT", "LLM_MAX_RETRIES", "LLM_RETRY_DELAY",
	"VECTOR_DIMENSION", "CHUNK_TARGET_WORDS", "CHUNK_MAX_WORDS", "EMBED_BATCH_SIZE",
	"EMBED_WORKERS", "EPISODES_PATH", "INGEST_LIMIT", "SEARCH_THRESHOLD", "WISDOM_HTTP_ADDR",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Store != storage.BackendSupabase {
		t.Errorf("Store = %s, want supabase", cfg.Store)
	}
	if cfg.Provider != llm.ProviderGemini {
		t.Errorf("Provider = %s, want gemini", cfg.Provider)
	}
	if cfg.VectorDimension != 768 {
		t.Errorf("VectorDimension = %d, want 768", cfg.VectorDimension)
	}
	if cfg.ChunkTargetWords != 400 || cfg.ChunkMaxWords != 600 {
		t.Errorf("chunk sizes = %d/%d, want 400/600", cfg.ChunkTargetWords, cfg.ChunkMaxWords)
	}
	if cfg.EmbedBatchSize != 10 {
		t.Errorf("EmbedBatchSize = %d, want 10", cfg.EmbedBatchSize)
	}
	if cfg.EmbedWorkers != 1 {
		t.Errorf("EmbedWorkers = %d, want 1", cfg.EmbedWorkers)
	}
	if cfg.SearchThreshold != 0.5 {
		t.Errorf("SearchThreshold = %f, want 0.5", cfg.SearchThreshold)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.IngestLimit != 0 {
		t.Errorf("IngestLimit = %d, want 0", cfg.IngestLimit)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log = %s/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("WISDOM_STORE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/wisdom")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-small")
	t.Setenv("VECTOR_DIMENSION", "1536")
	t.Setenv("CHUNK_TARGET_WORDS", "200")
	t.Setenv("CHUNK_MAX_WORDS", "300")
	t.Setenv("EMBED_BATCH_SIZE", "20")
	t.Setenv("EMBED_WORKERS", "4")
	t.Setenv("SEARCH_THRESHOLD", "0.7")
	t.Setenv("LLM_TIMEOUT", "60s")
	t.Setenv("LLM_MAX_RETRIES", "5")
	t.Setenv("INGEST_LIMIT", "3")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Store != storage.BackendPostgres {
		t.Errorf("Store = %s, want postgres", cfg.Store)
	}
	if cfg.APIKey() != "sk-test" {
		t.Errorf("APIKey() = %s, want sk-test", cfg.APIKey())
	}
	if cfg.VectorDimension != 1536 || cfg.EmbedBatchSize != 20 || cfg.EmbedWorkers != 4 {
		t.Errorf("unexpected ints: %+v", cfg)
	}
	if cfg.SearchThreshold != 0.7 {
		t.Errorf("SearchThreshold = %f, want 0.7", cfg.SearchThreshold)
	}
	if cfg.Timeout != 60*time.Second || cfg.MaxRetries != 5 {
		t.Errorf("retry = %v/%d, want 60s/5", cfg.Timeout, cfg.MaxRetries)
	}
	if cfg.IngestLimit != 3 {
		t.Errorf("IngestLimit = %d, want 3", cfg.IngestLimit)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", cfg.LogFormat)
	}

	opts := cfg.StorageOptions()
	if opts.Backend != storage.BackendPostgres || opts.DatabaseURL != "postgres://localhost/wisdom" || !opts.EnsureSchema || opts.Dimension != 1536 {
		t.Errorf("StorageOptions() = %+v", opts)
	}

	lc := cfg.LLMConfig()
	if lc.Provider != "openai" || lc.APIKey != "sk-test" || lc.Dimension != 1536 || lc.Retry.MaxRetries != 5 {
		t.Errorf("LLMConfig() = %+v", lc)
	}
}

func TestLoad_FallbackNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("NEXT_PUBLIC_SUPABASE_PUBLISHABLE_DEFAULT_KEY", "anon")
	t.Setenv("GEMIMI_API_KEY", "typo-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SupabaseURL != "https://example.supabase.co" || cfg.SupabaseKey != "anon" {
		t.Errorf("supabase = %s/%s", cfg.SupabaseURL, cfg.SupabaseKey)
	}
	if cfg.GeminiAPIKey != "typo-key" {
		t.Errorf("GeminiAPIKey = %s, want typo-key", cfg.GeminiAPIKey)
	}

	// Primary names win over fallbacks
	t.Setenv("GEMINI_API_KEY", "real-key")
	cfg, _ = Load()
	if cfg.GeminiAPIKey != "real-key" {
		t.Errorf("GeminiAPIKey = %s, want real-key", cfg.GeminiAPIKey)
	}
}

func TestLoadFile_TOMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wisdom.toml")
	content := `
store = "sqlite"

[sqlite]
path = "/tmp/wisdom.db"

[llm]
provider = "openai"
openai_api_key = "file-key"
timeout = "10s"
max_retries = 0

[ingest]
episodes_path = "/data/episodes"
chunk_target_words = 100
chunk_max_words = 150

[search]
threshold = 0.3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHUNK_MAX_WORDS", "175")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Store != storage.BackendSQLite || cfg.SQLitePath != "/tmp/wisdom.db" {
		t.Errorf("store = %s %s", cfg.Store, cfg.SQLitePath)
	}
	if cfg.Provider != llm.ProviderOpenAI || cfg.OpenAIAPIKey != "file-key" {
		t.Errorf("llm = %s %s", cfg.Provider, cfg.OpenAIAPIKey)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 from file", cfg.MaxRetries)
	}
	if cfg.EpisodesPath != "/data/episodes" {
		t.Errorf("EpisodesPath = %s", cfg.EpisodesPath)
	}
	if cfg.ChunkTargetWords != 100 || cfg.ChunkMaxWords != 175 {
		t.Errorf("chunk sizes = %d/%d, want 100/175", cfg.ChunkTargetWords, cfg.ChunkMaxWords)
	}
	if cfg.SearchThreshold != 0.3 {
		t.Errorf("SearchThreshold = %f, want 0.3", cfg.SearchThreshold)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("store = [unclosed"), 0o600)
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected error for invalid TOML")
	}

	badDuration := filepath.Join(dir, "duration.toml")
	os.WriteFile(badDuration, []byte("[llm]\ntimeout = \"soon\"\n"), 0o600)
	if _, err := LoadFile(badDuration); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "mongo" }},
		{"unknown provider", func(c *Config) { c.Provider = "llama" }},
		{"threshold too high", func(c *Config) { c.SearchThreshold = 1.5 }},
		{"threshold negative", func(c *Config) { c.SearchThreshold = -0.1 }},
		{"retries too high", func(c *Config) { c.MaxRetries = 11 }},
		{"retries negative", func(c *Config) { c.MaxRetries = -1 }},
		{"zero dimension", func(c *Config) { c.VectorDimension = 0 }},
		{"target exceeds max", func(c *Config) { c.ChunkTargetWords = 700 }},
		{"zero target", func(c *Config) { c.ChunkTargetWords = 0 }},
		{"zero batch", func(c *Config) { c.EmbedBatchSize = 0 }},
		{"zero workers", func(c *Config) { c.EmbedWorkers = 0 }},
		{"negative limit", func(c *Config) { c.IngestLimit = -1 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireStore(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("RequireStore() = %v, want ErrMissingCredentials", err)
	}
	if err := cfg.RequireLLM(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("RequireLLM() = %v, want ErrMissingCredentials", err)
	}

	cfg.SupabaseURL, cfg.SupabaseKey, cfg.GeminiAPIKey = "https://x.supabase.co", "key", "gemini"
	if err := cfg.RequireStore(); err != nil {
		t.Errorf("RequireStore() = %v", err)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Errorf("RequireLLM() = %v", err)
	}

	cfg.Store = storage.BackendPostgres
	if err := cfg.RequireStore(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("postgres without DATABASE_URL: %v", err)
	}

	cfg.Store = storage.BackendSQLite
	if err := cfg.RequireStore(); err != nil {
		t.Errorf("sqlite needs no credentials, got %v", err)
	}

	cfg.Provider = llm.ProviderOpenAI
	if err := cfg.RequireLLM(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("openai without key: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if err := LoadDotEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}

	path := filepath.Join(dir, "test.env")
	os.WriteFile(path, []byte("EMBED_WORKERS=6\n"), 0o600)
	os.Unsetenv("EMBED_WORKERS")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() = %v", err)
	}
	if got := os.Getenv("EMBED_WORKERS"); got != "6" {
		t.Errorf("EMBED_WORKERS = %q, want 6", got)
	}
}
