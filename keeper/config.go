package keeper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config controls summarization and retention. Defaults match the shipped
// behavior; a per-project .claude/summaries/config.toml can override them,
// and the API key / base URL come from the environment.
type Config struct {
	// RetentionCap bounds the index; oldest entries are evicted first.
	RetentionCap int `toml:"retention_cap"`

	// FreshnessWindowHours bounds auto-reload on resume: snapshots older
	// than this are not re-injected.
	FreshnessWindowHours int `toml:"freshness_window_hours"`

	Summarizer SummarizerConfig `toml:"summarizer"`
}

// SummarizerConfig configures the LLM-backed strategy.
type SummarizerConfig struct {
	Model string `toml:"model"`

	// TimeoutSeconds is the client-side deadline for the LLM call. It must
	// stay strictly below the host's hook timeout so a slow call degrades to
	// the deterministic strategy instead of the host killing the process.
	TimeoutSeconds int `toml:"timeout_seconds"`

	APIKey  string `toml:"-"`
	BaseURL string `toml:"-"`
}

// DefaultConfig returns the fixed defaults: 50 retained entries, 24 hour
// freshness window, 60 second LLM budget.
func DefaultConfig() Config {
	return Config{
		RetentionCap:         50,
		FreshnessWindowHours: 24,
		Summarizer: SummarizerConfig{
			Model:          "gpt-5-mini",
			TimeoutSeconds: 60,
		},
	}
}

// LoadConfig reads the optional per-project config file and applies
// environment overrides. A missing file is not an error.
func LoadConfig(projectPath string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(SummariesDir(projectPath), "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.RetentionCap < 1 {
		cfg.RetentionCap = DefaultConfig().RetentionCap
	}
	if cfg.FreshnessWindowHours < 1 {
		cfg.FreshnessWindowHours = DefaultConfig().FreshnessWindowHours
	}
	if cfg.Summarizer.TimeoutSeconds < 1 {
		cfg.Summarizer.TimeoutSeconds = DefaultConfig().Summarizer.TimeoutSeconds
	}

	if key := os.Getenv("CONTEXT_KEEPER_API_KEY"); key != "" {
		cfg.Summarizer.APIKey = key
	} else {
		cfg.Summarizer.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Summarizer.BaseURL = os.Getenv("CONTEXT_KEEPER_API_URL")

	return cfg, nil
}

// FreshnessWindow returns the configured window as a duration.
func (c Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowHours) * time.Hour
}

// LLMTimeout returns the configured LLM deadline as a duration.
func (c SummarizerConfig) LLMTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SummariesDir is the per-project storage root.
func SummariesDir(projectPath string) string {
	return filepath.Join(projectPath, ".claude", "summaries")
}
