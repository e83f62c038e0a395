package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/abhisek/sunny/internal/store"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveLLMCall(purpose, outcome string, _ time.Duration, _, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, purpose+":"+outcome)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	mock := NewMockProvider(down(), down(), okResponse())
	p := WithBreaker(mock, BreakerConfig{FailureThreshold: 2, MaxRequests: 1, Timeout: time.Hour}, nil)

	for i := 0; i < 2; i++ {
		if _, err := p.Generate(context.Background(), Request{}); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("open breaker reached provider: %d calls", mock.CallCount())
	}
	if st := p.(*BreakerProvider).State(); st != gobreaker.StateOpen {
		t.Fatalf("state = %s", st)
	}
}

func TestBreaker_InvalidResponsesDoNotTrip(t *testing.T) {
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}}
	mock := NewMockProvider(invalid, invalid, invalid, okResponse())
	p := WithBreaker(mock, BreakerConfig{FailureThreshold: 2, MaxRequests: 1, Timeout: time.Hour}, nil)

	for i := 0; i < 3; i++ {
		p.Generate(context.Background(), Request{})
	}
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestBreaker_DisabledWithZeroThreshold(t *testing.T) {
	mock := NewMockProvider()
	if p := WithBreaker(mock, BreakerConfig{}, nil); p != Provider(mock) {
		t.Fatalf("expected provider unchanged, got %T", p)
	}
}

func TestLogging_RecordsEvents(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	obs := &recordingObserver{}
	mock := NewMockProvider(
		MockResponse{Content: wrapText("Hello!"), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		down(),
	)
	p := WithLogging(mock, st.Events(), nil, obs)

	ctx := WithPurpose(context.Background(), PurposeChat)
	if _, err := p.Generate(ctx, Request{System: "You are Sunny.", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	events, err := st.Events().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	var ok, failed int
	for _, e := range events {
		if e.Purpose != PurposeChat || e.Provider != "mock" {
			t.Errorf("purpose = %q, provider = %q", e.Purpose, e.Provider)
		}
		if e.Success {
			ok++
			if e.InputTokens != 12 || e.ResponseBody != `"Hello!"` {
				t.Errorf("success event = %+v", e)
			}
		} else {
			failed++
			if e.ErrorMessage == "" {
				t.Error("failed event has no error message")
			}
		}
	}
	if ok != 1 || failed != 1 {
		t.Fatalf("ok=%d failed=%d", ok, failed)
	}
	if len(obs.outcomes) != 2 || obs.outcomes[0] != "chat:success" || obs.outcomes[1] != "chat:error" {
		t.Fatalf("observer = %v", obs.outcomes)
	}
}

func TestSerializeRequest(t *testing.T) {
	got := serializeRequest(Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Schema:   &Schema{Name: "s", Definition: map[string]any{"type": "object"}},
	})
	want := "[system]\nsys\n\n[user]\nhello\n\n[schema: s]\n{\"type\":\"object\"}\n"
	if got != want {
		t.Fatalf("serializeRequest() = %q, want %q", got, want)
	}
}

func TestTracing_PassesThrough(t *testing.T) {
	p := WithTracing(NewMockProvider(okResponse(), down()))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error to propagate")
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID() = %q", p.ModelID())
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestTimeout(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWrap_ChainOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Retry = retryConfig()
	p := Wrap(NewMockProvider(down(), okResponse()), cfg, Deps{})

	to, ok := p.(*TimeoutProvider)
	if !ok {
		t.Fatalf("outermost = %T, want *TimeoutProvider", p)
	}
	if _, ok := to.inner.(*BreakerProvider); !ok {
		t.Fatalf("second = %T, want *BreakerProvider", to.inner)
	}
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("retry inside chain should recover: %v", err)
	}
}
