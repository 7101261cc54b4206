package config

import (
	"fmt"
	"os"
	"time"
)

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Name       string        `mapstructure:"name"`
	Provider   string        `mapstructure:"provider"`     // "jina" or "openai-compatible"
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`      // direct value wins over APIKeyEnv
	APIKeyEnv  string        `mapstructure:"api_key_env"`
	BaseURL    string        `mapstructure:"base_url"`     // OpenAI-compatible servers (TEI, Ollama, vLLM, ...)
	BaseURLEnv string        `mapstructure:"base_url_env"`
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ResolveEnvVars fills APIKey and BaseURL from the referenced environment
// variables when they were not set directly.
func (c *EmbeddingConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		c.APIKey = os.Getenv(c.APIKeyEnv)
	}
	if c.BaseURLEnv != "" && c.BaseURL == "" {
		c.BaseURL = os.Getenv(c.BaseURLEnv)
	}
}

// Validate checks the fields every provider needs.
func (c *EmbeddingConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("embedding %q: provider is required", c.Name)
	}
	if c.Model == "" {
		return fmt.Errorf("embedding %q: model is required", c.Name)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("embedding %q: dimensions must be positive", c.Name)
	}

	switch c.Provider {
	case "jina":
		if c.APIKey == "" {
			return fmt.Errorf("embedding %q: api_key is required for jina (set directly or via %s)", c.Name, c.APIKeyEnv)
		}
	case "openai-compatible":
		// Self-hosted servers often run without a key; a base URL is enough.
		if c.APIKey == "" && c.BaseURL == "" {
			return fmt.Errorf("embedding %q: api_key or base_url is required", c.Name)
		}
	default:
		return fmt.Errorf("embedding %q: unknown provider %q", c.Name, c.Provider)
	}

	return nil
}
