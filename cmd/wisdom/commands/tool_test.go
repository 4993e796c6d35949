// ABOUTME: Tests for the tool, search, episodes, stats, mcp and serve commands
// ABOUTME: Covers command structure and the validation done before any connection

package commands

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/podcast-wisdom/internal/advisor"
	"github.com/harper/podcast-wisdom/internal/config"
	"github.com/harper/podcast-wisdom/internal/storage/sqlite"
)

func TestParseToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantLen int
		wantErr bool
	}{
		{"no args", []string{"list_episodes"}, 0, false},
		{"blank args", []string{"list_episodes", "  "}, 0, false},
		{"object", []string{"search_wisdom", `{"query":"pricing","limit":3}`}, 2, false},
		{"array", []string{"search_wisdom", `["pricing"]`}, 0, true},
		{"malformed", []string{"search_wisdom", `{query}`}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToolArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseToolArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestToolCmd_ValidatesBeforeConnecting(t *testing.T) {
	// Invalid calls fail on validation even though no store is configured
	_, err := runRoot(t, "tool", "nope")
	if !errors.Is(err, advisor.ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}

	_, err = runRoot(t, "tool", "search_wisdom", `{}`)
	if !errors.Is(err, advisor.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestToolCmd_ListsToolsInHelp(t *testing.T) {
	cmd := NewToolCmd()
	for _, def := range advisor.Definitions() {
		if !strings.Contains(cmd.Long, def.Name) {
			t.Errorf("Long description should list %s", def.Name)
		}
	}
}

func TestSearchCmd(t *testing.T) {
	cmd := NewSearchCmd()

	if cmd.Use != "search <query>" {
		t.Errorf("Use = %q, want %q", cmd.Use, "search <query>")
	}
	if f := cmd.Flags().Lookup("limit"); f == nil || f.DefValue != "5" {
		t.Error("--limit flag should default to 5")
	}
	if _, err := runRoot(t, "search", "--limit", "0", "pricing"); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestEpisodesCmd(t *testing.T) {
	cmd := NewEpisodesCmd()

	for flag, def := range map[string]string{"guest": "", "search": "", "sort": "views", "limit": "10"} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Fatalf("--%s flag not found", flag)
		}
		if f.DefValue != def {
			t.Errorf("--%s default = %q, want %q", flag, f.DefValue, def)
		}
	}

	if _, err := runRoot(t, "episodes", "--sort", "alphabetical"); err == nil {
		t.Error("expected error for unknown sort")
	}
	if _, err := runRoot(t, "episodes", "--limit", "0"); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestStatsCmd_MissingCredentials(t *testing.T) {
	t.Setenv("WISDOM_STORE", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "")

	_, err := runRoot(t, "stats")
	if err == nil || !strings.Contains(err.Error(), "missing credentials") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

func TestSearchCmd_MissingModelKeyClosesStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wisdom.db")
	t.Setenv("WISDOM_STORE", "sqlite")
	t.Setenv("WISDOM_SQLITE_PATH", dbPath)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMIMI_API_KEY", "")

	// the store opens, then the provider check fails
	_, err := runRoot(t, "search", "pricing")
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("reopening store after failed setup: %v", err)
	}
	_ = store.Close()
}

func TestMCPCmd(t *testing.T) {
	cmd := NewMCPCmd()

	if cmd.Use != "mcp" {
		t.Errorf("Use = %q, want %q", cmd.Use, "mcp")
	}
	if !strings.Contains(cmd.Long, "MCP") || !strings.Contains(cmd.Long, "stdio") {
		t.Error("Long description should mention MCP and stdio")
	}
	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
	if !strings.Contains(cmd.Example, "wisdom mcp") {
		t.Error("Example should show how to start the server")
	}
}

func TestServeCmd(t *testing.T) {
	cmd := NewServeCmd()

	if f := cmd.Flags().Lookup("addr"); f == nil {
		t.Fatal("--addr flag not found")
	}
	for _, endpoint := range []string{"/healthz", "/tools", "/stats"} {
		if !strings.Contains(cmd.Long, endpoint) {
			t.Errorf("Long description should document %s", endpoint)
		}
	}
}
