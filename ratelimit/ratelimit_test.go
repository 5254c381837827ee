package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Delay:             time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxDelay:          10 * time.Millisecond,
		MaxAttempts:       3,
	}
}

func TestExecuteWithRetry_Success(t *testing.T) {
	l := New(testConfig())

	calls := 0
	err := l.ExecuteWithRetry(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithRetry returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecuteWithRetry_NonThrottleErrorNotRetried(t *testing.T) {
	l := New(testConfig())

	calls := 0
	wantErr := errors.New("smtp: connection refused")
	err := l.ExecuteWithRetry(context.Background(), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("ExecuteWithRetry error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-throttle error)", calls)
	}
}

func TestExecuteWithRetry_ThrottleErrorRetried(t *testing.T) {
	l := New(testConfig())

	calls := 0
	err := l.ExecuteWithRetry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("429 rate limit exceeded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithRetry returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestHandleErrorBacksOff(t *testing.T) {
	l := New(testConfig())

	retry, wait1 := l.handleError(errors.New("rate limit exceeded"))
	if !retry {
		t.Fatal("first throttle error should be retryable")
	}
	_, wait2 := l.handleError(errors.New("rate limit exceeded"))
	if wait2 < wait1 {
		t.Errorf("backoff wait shrank: first %v, second %v", wait1, wait2)
	}

	l.success()
	if l.consecutiveErrors != 0 {
		t.Errorf("consecutiveErrors = %d after success, want 0", l.consecutiveErrors)
	}
}
