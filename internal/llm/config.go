package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/quizdeck/internal/store"
)

// Config selects and configures a provider.
type Config struct {
	// Provider is "anthropic", "openai", "gemini", "openrouter" or "mock".
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds one call including retries.
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig tunes RetryProvider.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns the defaults. No provider is selected.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// envOverrides maps QUIZDECK_* variables onto config fields.
func (c *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"QUIZDECK_LLM_PROVIDER":      &c.Provider,
		"QUIZDECK_ANTHROPIC_API_KEY": &c.Anthropic.APIKey,
		"QUIZDECK_ANTHROPIC_MODEL":   &c.Anthropic.Model,
		"QUIZDECK_OPENAI_API_KEY":    &c.OpenAI.APIKey,
		"QUIZDECK_OPENAI_MODEL":      &c.OpenAI.Model,
		"QUIZDECK_OPENAI_BASE_URL":   &c.OpenAI.BaseURL,
		"QUIZDECK_GEMINI_API_KEY":    &c.Gemini.APIKey,
		"QUIZDECK_GEMINI_MODEL":      &c.Gemini.Model,
		"QUIZDECK_OPENROUTER_API_KEY": &c.OpenRouter.APIKey,
		"QUIZDECK_OPENROUTER_MODEL":  &c.OpenRouter.Model,
	}
}

// ApplyEnv overrides fields from QUIZDECK_* environment variables.
func (c *Config) ApplyEnv() {
	for name, dst := range c.envOverrides() {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

// ConfigFromEnv is DefaultConfig with ApplyEnv applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// Discover fills in a provider from the vendors' standard API key
// variables when none is selected, probing Gemini, OpenAI, Anthropic and
// OpenRouter in that order. It reports whether a provider is selected.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", "gemini", &c.Gemini.APIKey},
		{"OPENAI_API_KEY", "openai", &c.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", "anthropic", &c.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", "openrouter", &c.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			c.Provider = p.provider
			*p.key = k
			return true
		}
	}
	return false
}

// DiscoverConfig builds a config from the environment, falling back to
// the vendors' API key variables. It reports whether any provider was
// found.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	ok := cfg.Discover()
	return cfg, ok
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "", "mock":
		return nil
	case "anthropic":
		key, env = c.Anthropic.APIKey, "QUIZDECK_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "QUIZDECK_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "QUIZDECK_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "QUIZDECK_OPENROUTER_API_KEY"
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → base, so every attempt is logged.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithLogging(base, repo), cfg.Retry), nil
}
