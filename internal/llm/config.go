package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and tunes the provider. Provider is one of "anthropic",
// "openai", "gemini", "openrouter" or "mock"; empty means Discover.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
	Breaker    BreakerConfig

	// Timeout bounds one call, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// BreakerConfig configures the circuit breaker. A zero FailureThreshold
// disables it.
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// MaxRequests trial calls are let through while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
}

// DefaultConfig selects the small model of each backend.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
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
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
		},
		Timeout: 30 * time.Second,
	}
}

// backend describes one keyed provider: its name, the environment
// variable probed by Discover and where its key lives in a Config.
type backend struct {
	name   string
	envKey string
	key    func(*Config) *string
}

// backends is in Discover order.
var backends = []backend{
	{"gemini", "GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"openai", "OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"anthropic", "ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"openrouter", "OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

// Discover picks a provider from the standard *_API_KEY variables when
// none is set. It reports whether a provider is selected.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	for _, b := range backends {
		if k := os.Getenv(b.envKey); k != "" {
			c.Provider = b.name
			*b.key(c) = k
			return true
		}
	}
	return false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	for _, b := range backends {
		if b.name != c.Provider {
			continue
		}
		if *b.key(&c) == "" {
			return fmt.Errorf("%s API key is required (SUNNY_%s)", b.name, b.envKey)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
