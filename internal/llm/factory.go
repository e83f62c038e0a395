package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/store"
)

// Deps are the collaborators the provider middleware reports to. Every
// field is optional.
type Deps struct {
	Events   store.EventRepo
	Logger   *zap.Logger
	Observer CallObserver
}

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, breaker, retry, tracing and
// logging middleware.
func NewProvider(ctx context.Context, cfg Config, deps Deps) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Wrap(base, cfg, deps), nil
}

// Wrap applies the standard middleware chain to base:
// caller → timeout → breaker → retry → tracing → logging → base
func Wrap(base Provider, cfg Config, deps Deps) Provider {
	logged := WithLogging(base, deps.Events, deps.Logger, deps.Observer)
	traced := WithTracing(logged)
	retried := WithRetry(traced, cfg.Retry)
	broken := WithBreaker(retried, cfg.Breaker, deps.Logger)
	return WithTimeout(broken, cfg.Timeout)
}

// TimeoutProvider bounds each call, retries included.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider with a per-call deadline. A non-positive
// timeout returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
