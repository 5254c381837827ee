// Package ratelimit paces outbound calls to external services
// (mail delivery, spreadsheet export) with retry on throttling.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds pacing configuration.
type Config struct {
	// Delay is the minimum spacing between calls.
	Delay time.Duration
	// BackoffMultiplier grows the wait after consecutive throttle errors.
	BackoffMultiplier float64
	// MaxDelay caps the backoff wait.
	MaxDelay time.Duration
	// MaxAttempts bounds retries in ExecuteWithRetry.
	MaxAttempts int
}

// DefaultConfig returns the pacing used for bulk mail sends and
// spreadsheet exports.
func DefaultConfig() *Config {
	return &Config{
		Delay:             200 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxDelay:          30 * time.Second,
		MaxAttempts:       5,
	}
}

// Limiter spaces calls and applies exponential backoff on throttle errors.
type Limiter struct {
	limiter *rate.Limiter
	config  *Config

	mu                sync.Mutex
	consecutiveErrors int
	currentDelay      time.Duration
}

// New creates a limiter; a nil config uses DefaultConfig.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rps := float64(time.Second) / float64(cfg.Delay)
	return &Limiter{
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		currentDelay: cfg.Delay,
		config:       cfg,
	}
}

// Wait blocks until the limiter allows the next call.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// handleError reports whether err looks like throttling and, if so, how long
// to wait before retrying. It also slows the limiter down.
func (l *Limiter) handleError(err error) (shouldRetry bool, waitTime time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	errStr := strings.ToLower(err.Error())
	if !strings.Contains(errStr, "429") && !strings.Contains(errStr, "rate limit") && !strings.Contains(errStr, "too many") {
		return false, 0
	}

	l.consecutiveErrors++
	waitTime = time.Duration(math.Min(
		float64(l.currentDelay)*math.Pow(l.config.BackoffMultiplier, float64(l.consecutiveErrors-1)),
		float64(l.config.MaxDelay),
	))
	if waitTime > l.currentDelay {
		l.currentDelay = waitTime
		l.limiter.SetLimit(rate.Limit(float64(time.Second) / float64(waitTime)))
	}
	return l.consecutiveErrors < l.config.MaxAttempts, waitTime
}

// success resets the backoff state after a clean call.
func (l *Limiter) success() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.consecutiveErrors > 0 {
		l.consecutiveErrors = 0
		l.currentDelay = l.config.Delay
		l.limiter.SetLimit(rate.Limit(float64(time.Second) / float64(l.config.Delay)))
	}
}

// ExecuteWithRetry runs fn under the limiter, retrying throttle errors
// with backoff. Non-throttle errors are returned immediately.
func (l *Limiter) ExecuteWithRetry(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt < l.config.MaxAttempts; attempt++ {
		if err := l.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		err := fn()
		if err == nil {
			l.success()
			return nil
		}

		shouldRetry, waitTime := l.handleError(err)
		if !shouldRetry {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded", l.config.MaxAttempts)
}
