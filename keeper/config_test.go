package keeper

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONTEXT_KEEPER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CONTEXT_KEEPER_API_URL", "")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RetentionCap != 50 {
		t.Fatalf("RetentionCap=%d", cfg.RetentionCap)
	}
	if cfg.FreshnessWindow() != 24*time.Hour {
		t.Fatalf("FreshnessWindow=%v", cfg.FreshnessWindow())
	}
	if cfg.Summarizer.LLMTimeout() != 60*time.Second {
		t.Fatalf("LLMTimeout=%v", cfg.Summarizer.LLMTimeout())
	}
	if cfg.Summarizer.APIKey != "" {
		t.Fatalf("APIKey=%q", cfg.Summarizer.APIKey)
	}
}

func TestLoadConfig_TOMLOverrides(t *testing.T) {
	t.Setenv("CONTEXT_KEEPER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	project := t.TempDir()
	dir := SummariesDir(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	toml := `retention_cap = 10
freshness_window_hours = 48

[summarizer]
model = "gpt-5"
timeout_seconds = 30
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(project)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RetentionCap != 10 || cfg.FreshnessWindowHours != 48 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Summarizer.Model != "gpt-5" || cfg.Summarizer.TimeoutSeconds != 30 {
		t.Fatalf("summarizer=%+v", cfg.Summarizer)
	}
}

func TestLoadConfig_EnvSuppliesCredentials(t *testing.T) {
	t.Setenv("CONTEXT_KEEPER_API_KEY", "sk-keeper")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("CONTEXT_KEEPER_API_URL", "https://proxy.example.com/v1")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Summarizer.APIKey != "sk-keeper" {
		t.Fatalf("APIKey=%q", cfg.Summarizer.APIKey)
	}
	if cfg.Summarizer.BaseURL != "https://proxy.example.com/v1" {
		t.Fatalf("BaseURL=%q", cfg.Summarizer.BaseURL)
	}

	// The dedicated variable wins; the generic one is the fallback.
	t.Setenv("CONTEXT_KEEPER_API_KEY", "")
	cfg, err = LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Summarizer.APIKey != "sk-openai" {
		t.Fatalf("fallback APIKey=%q", cfg.Summarizer.APIKey)
	}
}

func TestLoadConfig_RejectsBadFile(t *testing.T) {
	t.Setenv("CONTEXT_KEEPER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	project := t.TempDir()
	dir := SummariesDir(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("retention_cap = {"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(project)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	// Defaults still come back so the caller can proceed.
	if cfg.RetentionCap != 50 {
		t.Fatalf("RetentionCap=%d", cfg.RetentionCap)
	}
}
