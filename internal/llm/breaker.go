package llm

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned without calling the provider while the
// breaker is open or its half-open trial budget is spent.
var ErrCircuitOpen = errors.New("LLM circuit breaker is open")

// BreakerProvider is a decorator that stops calling a failing provider
// for a cool-down period.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps a Provider with a circuit breaker. A zero
// FailureThreshold returns p unchanged.
func WithBreaker(p Provider, cfg BreakerConfig, logger *zap.Logger) Provider {
	if cfg.FailureThreshold == 0 {
		return p
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm:" + p.ModelID(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: breakerSuccess,
	})
	return &BreakerProvider{inner: p, cb: cb}
}

func (b *BreakerProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.inner.Generate(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}

func (b *BreakerProvider) ModelID() string {
	return b.inner.ModelID()
}

// State returns the current breaker state.
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

// breakerSuccess decides which errors count against the provider. Caller
// cancellation and malformed output say nothing about provider health.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		return true
	}
	var maxTok *ErrMaxTokensExceeded
	return errors.As(err, &maxTok)
}
