package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestFromStatus(t *testing.T) {
	cause := errors.New("boom")

	err := fromStatus(http.StatusTooManyRequests, time.Second, cause)
	var rl *ErrRateLimit
	if !errors.As(err, &rl) || rl.RetryAfter != time.Second {
		t.Fatalf("429 = %T (%v)", err, err)
	}

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		var unavail *ErrProviderUnavailable
		if err := fromStatus(status, 0, cause); !errors.As(err, &unavail) {
			t.Errorf("%d = %T, want *ErrProviderUnavailable", status, err)
		}
	}
	if !errors.Is(fromStatus(500, 0, cause), cause) {
		t.Error("cause not preserved")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":                              0,
		"3":                             3 * time.Second,
		" 10 ":                          10 * time.Second,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
