// Package openai adapts github.com/sashabaranov/go-openai to the
// model.Provider interface.
package openai

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Config holds OpenAI-compatible client configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     *float32
	MaxTokens       int
	HTTPTimeout     int    // seconds, default 300
	ReasoningEffort string // "low", "medium", or "high"; only sent for models with native thinking support
}

// ConfigFromEnv builds a Config from LLM_API_KEY / LLM_BASE_URL / LLM_MODEL
// / LLM_TEMPERATURE / LLM_MAX_TOKENS / LLM_HTTP_TIMEOUT / LLM_REASONING_EFFORT.
func ConfigFromEnv(log *zap.SugaredLogger) (*Config, error) {
	c := &Config{
		APIKey:          os.Getenv("LLM_API_KEY"),
		BaseURL:         envOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		Model:           envOrDefault("LLM_MODEL", "gpt-4o"),
		MaxTokens:       envIntOrDefault("LLM_MAX_TOKENS", 0, log),
		HTTPTimeout:     envIntOrDefault("LLM_HTTP_TIMEOUT", 300, log),
		ReasoningEffort: envOrDefault("LLM_REASONING_EFFORT", "medium"),
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			t := float32(f)
			c.Temperature = &t
		} else if log != nil {
			log.Warnw("invalid LLM_TEMPERATURE, ignoring", "value", v)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0.0 and 2.0, got %f", *c.Temperature)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int, log *zap.SugaredLogger) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warnw("invalid integer env var, using default", "key", key, "value", v, "default", def)
		}
		return def
	}
	return n
}
