package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUserAgent is sent on feed and article requests. Some news sites
// refuse requests without a browser-looking agent string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Config struct {
	// Claude settings
	ClaudeAPIKey string
	ClaudeModel  string
	APIEndpoint  string
	MaxTokens    int
	APITimeout   time.Duration

	// Feed settings
	SourcesPath string // optional YAML override; empty means embedded defaults
	FeedTimeout time.Duration
	FetchPause  time.Duration

	// Scraper settings
	ContentTimeout time.Duration

	// Cache settings
	SummariesDir string

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	// .env is optional; environment variables win if both are set
	_ = godotenv.Load()

	cfg := &Config{
		ClaudeModel:    "claude-3-haiku-20240307",
		APIEndpoint:    "https://api.anthropic.com/v1/messages",
		MaxTokens:      1000,
		APITimeout:     15 * time.Second,
		FeedTimeout:    10 * time.Second,
		FetchPause:     500 * time.Millisecond,
		ContentTimeout: 10 * time.Second,
		SummariesDir:   "summaries",
	}

	cfg.ClaudeAPIKey = os.Getenv("CLAUDE_API_KEY")
	cfg.ClaudeModel = getEnvOrDefault("CLAUDE_MODEL", cfg.ClaudeModel)
	cfg.APIEndpoint = getEnvOrDefault("CLAUDE_API_URL", cfg.APIEndpoint)
	cfg.MaxTokens = getEnvIntOrDefault("CLAUDE_MAX_TOKENS", cfg.MaxTokens)
	cfg.SourcesPath = os.Getenv("SOURCES_CONFIG_PATH")
	cfg.SummariesDir = getEnvOrDefault("SUMMARIES_DIR", cfg.SummariesDir)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks settings the pipeline cannot run without. A missing API
// key is deliberately not an error here: fetching and cache reads work
// without it, and the summarize client reports the missing key itself.
func (c *Config) Validate() error {
	if c.ClaudeModel == "" {
		return fmt.Errorf("CLAUDE_MODEL must not be empty")
	}
	if c.APIEndpoint == "" {
		return fmt.Errorf("CLAUDE_API_URL must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("CLAUDE_MAX_TOKENS must be positive")
	}
	if c.SummariesDir == "" {
		return fmt.Errorf("SUMMARIES_DIR must not be empty")
	}
	return nil
}

// SaveAPIKey persists the key to .env for later runs and applies it to the
// current config. The caller owns prompting the user for the key.
func (c *Config) SaveAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("api key is empty")
	}
	if err := os.WriteFile(".env", []byte(fmt.Sprintf("CLAUDE_API_KEY=%s\n", key)), 0o600); err != nil {
		return fmt.Errorf("writing .env: %w", err)
	}
	c.ClaudeAPIKey = key
	return nil
}
