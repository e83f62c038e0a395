package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "SUNNY_CONFIG"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 10, cfg.Quiz.Questions)
	assert.Equal(t, 3, cfg.Quiz.RaiseAfter)
	assert.Equal(t, 2, cfg.Quiz.LowerAfter)
	assert.Equal(t, 100, cfg.Progress.XPBase)
	assert.InDelta(t, 1.5, cfg.Progress.XPMultiplier, 1e-9)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.LLM.Provider)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "sunny.yaml")
	yaml := `
server:
  addr: ":9000"
  cors_origins: ["https://a.example"]
store:
  path: /tmp/yaml.db
quiz:
  questions: 5
rate_limit:
  requests: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SUNNY_SERVER_ADDR", ":9100")
	t.Setenv("SUNNY_AUTH_SECRET", "s3cret")
	t.Setenv("SUNNY_SERVER_CORS_ORIGINS", "https://b.example,https://c.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr, "env overrides yaml")
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/tmp/yaml.db", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Quiz.Questions)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, 20, cfg.RateLimit.Chat, "untouched defaults survive the overlay")
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearLLMEnv(t)

	path := filepath.Join(t.TempDir(), "sunny.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  demo: true\n"), 0o600))
	t.Setenv("SUNNY_CONFIG", path)
	t.Setenv("SUNNY_SERVER_TRUST_PROXY", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Server.Demo)
	assert.True(t, cfg.Server.TrustProxy)
	assert.False(t, Default().Server.TrustProxy)
}

func TestLoadErrors(t *testing.T) {
	clearLLMEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [\n"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)

	t.Setenv("SUNNY_QUIZ_QUESTIONS", "many")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Auth.Secret = "x"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"demo without secret", func(c *Config) { c.Auth.Secret = ""; c.Server.Demo = true }, ""},
		{"missing secret", func(c *Config) { c.Auth.Secret = "" }, "SUNNY_AUTH_SECRET"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "unknown store driver"},
		{"supabase without url", func(c *Config) { c.Store.Driver = "supabase" }, "SUNNY_STORE_SUPABASE_URL"},
		{"zero rate limit", func(c *Config) { c.RateLimit.Requests = 0 }, "rate limits"},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }, "window"},
		{"too many questions", func(c *Config) { c.Quiz.Questions = 99 }, "quiz questions"},
		{"zero raise", func(c *Config) { c.Quiz.RaiseAfter = 0 }, "thresholds"},
		{"bad log format", func(c *Config) { c.Telemetry.LogFormat = "xml" }, "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMConfig(t *testing.T) {
	clearLLMEnv(t)

	c := Default()
	_, ok := c.LLMConfig()
	assert.False(t, ok, "no keys means no provider")

	c.LLM.OpenAIKey = "sk-test"
	out, ok := c.LLMConfig()
	require.True(t, ok)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "sk-test", out.OpenAI.APIKey)
	assert.NoError(t, out.Validate())

	c = Default()
	t.Setenv("GEMINI_API_KEY", "g-key")
	out, ok = c.LLMConfig()
	require.True(t, ok)
	assert.Equal(t, "gemini", out.Provider)
	assert.Equal(t, "g-key", out.Gemini.APIKey)
}

func TestAuthConfigDemoSecret(t *testing.T) {
	c := Default()
	c.Server.Demo = true
	assert.Equal(t, DemoSecret, c.AuthConfig().Secret)

	c.Auth.Secret = "real"
	assert.Equal(t, "real", c.AuthConfig().Secret)
}

func TestServiceConfigs(t *testing.T) {
	c := Default()
	c.Quiz.RaiseAfter = 4
	c.Progress.ChatMessage = 7

	assert.Equal(t, 4, c.QuizConfig().Policy.RaiseAfter)
	assert.Equal(t, 7, c.ProgressConfig().Awards.ChatMessage)

	c.Store.Path = "/data/sunny.db"
	p, err := c.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/sunny.db", p)
}
