package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func TestAllow_FixedWindow(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, remaining, reset := l.Allow("ip:1", base.Add(time.Duration(i)*time.Second))
		if !ok {
			t.Fatalf("call %d rejected", i+1)
		}
		if remaining != 2-i {
			t.Errorf("call %d: remaining = %d, want %d", i+1, remaining, 2-i)
		}
		if !reset.Equal(base.Add(time.Minute)) {
			t.Errorf("reset = %v", reset)
		}
	}

	ok, remaining, _ := l.Allow("ip:1", base.Add(59*time.Second))
	if ok || remaining != 0 {
		t.Errorf("4th call: ok=%v remaining=%d", ok, remaining)
	}

	ok, remaining, reset := l.Allow("ip:1", base.Add(time.Minute))
	if !ok || remaining != 2 {
		t.Errorf("new window: ok=%v remaining=%d", ok, remaining)
	}
	if !reset.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("reset = %v", reset)
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)
	if ok, _, _ := l.Allow("a", base); !ok {
		t.Fatal("a rejected")
	}
	if ok, _, _ := l.Allow("b", base); !ok {
		t.Fatal("b rejected")
	}
	if ok, _, _ := l.Allow("a", base); ok {
		t.Fatal("second a allowed")
	}
}

func TestSweep(t *testing.T) {
	l := New(10, time.Minute)
	for i := 0; i < sweepEvery-1; i++ {
		l.Allow(fmt.Sprintf("k%d", i), base)
	}
	if l.Len() != sweepEvery-1 {
		t.Fatalf("len = %d", l.Len())
	}
	// The next call lands in a later window and triggers a sweep.
	l.Allow("fresh", base.Add(2*time.Minute))
	if l.Len() != 1 {
		t.Errorf("len after sweep = %d, want 1", l.Len())
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l := New(50, time.Minute)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := l.Allow("shared", base); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}
