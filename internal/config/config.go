// Package config loads Sunny's settings from an optional YAML file and
// SUNNY_* environment variables. Environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/sunny/internal/adaptive"
	"github.com/abhisek/sunny/internal/auth"
	"github.com/abhisek/sunny/internal/llm"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/quiz"
	"github.com/abhisek/sunny/internal/store"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SUNNY_"

// Config is the full application configuration.
type Config struct {
	Server    Server    `yaml:"server" envPrefix:"SERVER_"`
	Store     Store     `yaml:"store" envPrefix:"STORE_"`
	Auth      Auth      `yaml:"auth" envPrefix:"AUTH_"`
	RateLimit RateLimit `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	LLM       LLM       `yaml:"llm"`
	Progress  Progress  `yaml:"progress" envPrefix:"PROGRESS_"`
	Quiz      Quiz      `yaml:"quiz" envPrefix:"QUIZ_"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Server struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	CORSOrigins  []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	// Demo serves canned content instead of calling an LLM.
	Demo bool `yaml:"demo" env:"DEMO"`
	// TrustProxy honors X-Forwarded-For for rate limiting and logs.
	TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY"`
}

type Store struct {
	// Driver is "sqlite" or "supabase".
	Driver      string `yaml:"driver" env:"DRIVER"`
	Path        string `yaml:"path" env:"PATH"`
	SupabaseURL string `yaml:"supabase_url" env:"SUPABASE_URL"`
	SupabaseKey string `yaml:"supabase_key" env:"SUPABASE_KEY"`
}

type Auth struct {
	Secret     string        `yaml:"secret" env:"SECRET"`
	Issuer     string        `yaml:"issuer" env:"ISSUER"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

type RateLimit struct {
	Requests int           `yaml:"requests" env:"REQUESTS"`
	Window   time.Duration `yaml:"window" env:"WINDOW"`
	// Chat is the per-window limit for the chat endpoint.
	Chat int `yaml:"chat" env:"CHAT"`
}

// LLM variables carry no section prefix: SUNNY_LLM_PROVIDER,
// SUNNY_ANTHROPIC_API_KEY and so on.
type LLM struct {
	Provider         string        `yaml:"provider" env:"LLM_PROVIDER"`
	AnthropicKey     string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string        `yaml:"anthropic_model" env:"ANTHROPIC_MODEL"`
	OpenAIKey        string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel      string        `yaml:"openai_model" env:"OPENAI_MODEL"`
	OpenAIBaseURL    string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	GeminiKey        string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel      string        `yaml:"gemini_model" env:"GEMINI_MODEL"`
	OpenRouterKey    string        `yaml:"openrouter_api_key" env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string        `yaml:"openrouter_model" env:"OPENROUTER_MODEL"`
	Timeout          time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
	MaxAttempts      int           `yaml:"max_attempts" env:"LLM_MAX_ATTEMPTS"`
	BreakerThreshold uint32        `yaml:"breaker_threshold" env:"LLM_BREAKER_THRESHOLD"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" env:"LLM_BREAKER_TIMEOUT"`
}

type Progress struct {
	XPBase          int     `yaml:"xp_base" env:"XP_BASE"`
	XPMultiplier    float64 `yaml:"xp_multiplier" env:"XP_MULTIPLIER"`
	CorrectAnswer   int     `yaml:"correct_answer_xp" env:"CORRECT_ANSWER_XP"`
	QuizComplete    int     `yaml:"quiz_complete_xp" env:"QUIZ_COMPLETE_XP"`
	PerfectQuiz     int     `yaml:"perfect_quiz_xp" env:"PERFECT_QUIZ_XP"`
	ChatMessage     int     `yaml:"chat_message_xp" env:"CHAT_MESSAGE_XP"`
	SessionComplete int     `yaml:"session_complete_xp" env:"SESSION_COMPLETE_XP"`
}

type Quiz struct {
	Questions  int `yaml:"questions" env:"QUESTIONS"`
	MaxCount   int `yaml:"max_questions" env:"MAX_QUESTIONS"`
	RaiseAfter int `yaml:"raise_after" env:"RAISE_AFTER"`
	LowerAfter int `yaml:"lower_after" env:"LOWER_AFTER"`
}

// Telemetry variables carry no section prefix: SUNNY_OTEL_ENDPOINT,
// SUNNY_LOG_LEVEL and SUNNY_LOG_FORMAT.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL"`
	// LogFormat is "json" or "console".
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	llmDefaults := llm.DefaultConfig()
	prog := progress.DefaultConfig()
	qz := quiz.DefaultConfig()
	au := auth.DefaultConfig()
	return Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		Store: Store{Driver: "sqlite"},
		Auth: Auth{
			Issuer:     au.Issuer,
			TokenTTL:   au.TokenTTL,
			BcryptCost: au.BcryptCost,
		},
		RateLimit: RateLimit{Requests: 120, Window: time.Minute, Chat: 20},
		LLM: LLM{
			AnthropicModel:   llmDefaults.Anthropic.Model,
			OpenAIModel:      llmDefaults.OpenAI.Model,
			GeminiModel:      llmDefaults.Gemini.Model,
			OpenRouterModel:  llmDefaults.OpenRouter.Model,
			Timeout:          llmDefaults.Timeout,
			MaxAttempts:      llmDefaults.Retry.MaxAttempts,
			BreakerThreshold: llmDefaults.Breaker.FailureThreshold,
			BreakerTimeout:   llmDefaults.Breaker.Timeout,
		},
		Progress: Progress{
			XPBase:          prog.Curve.Base,
			XPMultiplier:    prog.Curve.Multiplier,
			CorrectAnswer:   prog.Awards.CorrectAnswer,
			QuizComplete:    prog.Awards.QuizComplete,
			PerfectQuiz:     prog.Awards.PerfectQuiz,
			ChatMessage:     prog.Awards.ChatMessage,
			SessionComplete: prog.Awards.SessionComplete,
		},
		Quiz: Quiz{
			Questions:  qz.DefaultCount,
			MaxCount:   qz.MaxCount,
			RaiseAfter: qz.Policy.RaiseAfter,
			LowerAfter: qz.Policy.LowerAfter,
		},
		Telemetry: Telemetry{LogLevel: "info", LogFormat: "json"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (if path is not empty), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "sqlite":
	case "supabase":
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			errs = append(errs, errors.New("supabase store needs SUNNY_STORE_SUPABASE_URL and SUNNY_STORE_SUPABASE_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Auth.Secret == "" && !c.Server.Demo {
		errs = append(errs, errors.New("SUNNY_AUTH_SECRET is required outside demo mode"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Chat <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.Quiz.Questions < 1 || c.Quiz.Questions > c.Quiz.MaxCount {
		errs = append(errs, fmt.Errorf("quiz questions must be between 1 and %d", c.Quiz.MaxCount))
	}
	if c.Quiz.RaiseAfter < 1 || c.Quiz.LowerAfter < 1 {
		errs = append(errs, errors.New("quiz streak thresholds must be positive"))
	}
	switch strings.ToLower(c.Telemetry.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Telemetry.LogFormat))
	}
	return errors.Join(errs...)
}

// DemoSecret signs tokens in demo mode when no secret is configured.
const DemoSecret = "sunny-demo-secret"

// AuthConfig returns the auth service settings.
func (c Config) AuthConfig() auth.Config {
	secret := c.Auth.Secret
	if secret == "" && c.Server.Demo {
		secret = DemoSecret
	}
	return auth.Config{Secret: secret, Issuer: c.Auth.Issuer, TokenTTL: c.Auth.TokenTTL, BcryptCost: c.Auth.BcryptCost}
}

// DBPath returns the SQLite path, falling back to the XDG data directory.
func (c Config) DBPath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	return store.DefaultDBPath()
}

// LLMConfig maps the LLM section onto provider settings. With no
// provider set, the standard *_API_KEY variables are probed. The second
// return value is false when no provider is available.
func (c Config) LLMConfig() (llm.Config, bool) {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.AnthropicKey, Model: c.LLM.AnthropicModel}
	out.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAIKey, Model: c.LLM.OpenAIModel, BaseURL: c.LLM.OpenAIBaseURL}
	out.Gemini = llm.GeminiConfig{APIKey: c.LLM.GeminiKey, Model: c.LLM.GeminiModel}
	out.OpenRouter = llm.OpenRouterConfig{APIKey: c.LLM.OpenRouterKey, Model: c.LLM.OpenRouterModel}
	out.Timeout = c.LLM.Timeout
	out.Retry.MaxAttempts = c.LLM.MaxAttempts
	out.Breaker.FailureThreshold = c.LLM.BreakerThreshold
	out.Breaker.Timeout = c.LLM.BreakerTimeout

	if out.Provider == "" {
		switch {
		case c.LLM.GeminiKey != "":
			out.Provider = "gemini"
		case c.LLM.OpenAIKey != "":
			out.Provider = "openai"
		case c.LLM.AnthropicKey != "":
			out.Provider = "anthropic"
		case c.LLM.OpenRouterKey != "":
			out.Provider = "openrouter"
		}
	}
	if !out.Discover() {
		return out, false
	}
	return out, true
}

// ProgressConfig returns the XP curve and award table.
func (c Config) ProgressConfig() progress.Config {
	out := progress.DefaultConfig()
	out.Curve = progress.Curve{Base: c.Progress.XPBase, Multiplier: c.Progress.XPMultiplier}
	out.Awards = progress.Awards{
		CorrectAnswer:   c.Progress.CorrectAnswer,
		QuizComplete:    c.Progress.QuizComplete,
		PerfectQuiz:     c.Progress.PerfectQuiz,
		ChatMessage:     c.Progress.ChatMessage,
		SessionComplete: c.Progress.SessionComplete,
	}
	return out
}

// QuizConfig returns the quiz settings.
func (c Config) QuizConfig() quiz.Config {
	out := quiz.DefaultConfig()
	out.DefaultCount = c.Quiz.Questions
	out.MaxCount = c.Quiz.MaxCount
	out.Policy = adaptive.Policy{RaiseAfter: c.Quiz.RaiseAfter, LowerAfter: c.Quiz.LowerAfter}
	return out
}
