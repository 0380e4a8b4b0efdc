package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
env: production
ai:
  provider: OpenAI
  timeout: 45
  openai:
    model: gpt-4o-mini
http:
  shutdown_timeout: 3s
database:
  url: "sqlite::memory:"
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PATHFINDER_CONFIG", path)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != "openai" {
		t.Fatalf("provider=%q", cfg.AI.Provider)
	}
	if cfg.AI.Timeout.Duration != 45*time.Second {
		t.Fatalf("timeout=%s", cfg.AI.Timeout.Duration)
	}
	if cfg.AI.OpenAI.Model != "gpt-4o-mini" || cfg.AI.OpenAI.APIKey != "sk-test" {
		t.Fatalf("openai=%+v", cfg.AI.OpenAI)
	}
	// Untouched sections keep their defaults.
	if cfg.AI.Google.Model != "gemini-1.5-flash" {
		t.Fatalf("google model=%q", cfg.AI.Google.Model)
	}
	if cfg.AI.MaxTokens != 8192 {
		t.Fatalf("max_tokens=%d", cfg.AI.MaxTokens)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 3*time.Second {
		t.Fatalf("shutdown=%s", cfg.HTTP.ShutdownTimeout.Duration)
	}
	if cfg.HTTP.Addr != ":9001" {
		t.Fatalf("addr=%q", cfg.HTTP.Addr)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
}

func TestLoadRejectsBadTemperature(t *testing.T) {
	t.Setenv("PATHFINDER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing file")
	}

	t.Setenv("PATHFINDER_CONFIG", "")
	t.Setenv("AI_TEMPERATURE", "3.5")
	if _, err := Load(); err == nil {
		t.Fatalf("expected temperature error")
	}
}
