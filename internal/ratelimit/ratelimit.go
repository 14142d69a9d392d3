// Package ratelimit paces outbound provider calls with one token bucket per
// named endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"facettes/internal/metrics"
)

// ErrUnknownEndpoint is returned when acquiring an endpoint that was never registered.
var ErrUnknownEndpoint = fmt.Errorf("endpoint not registered")

// Limiter implements blocking token bucket pacing. Buckets hold at most
// rate tokens and start full.
type Limiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	logger  *slog.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

type bucket struct {
	rate     float64
	tokens   float64
	lastCall time.Time
	waits    int
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces the time source and the sleep function. Used by tests.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// New creates an empty limiter.
func New(logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register declares an endpoint paced at ratePerSecond. Registering again
// resets the bucket.
func (l *Limiter) Register(name string, ratePerSecond float64) error {
	if ratePerSecond <= 0 {
		return fmt.Errorf("rate for %q must be positive, got %v", name, ratePerSecond)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.buckets[name] = &bucket{
		rate:     ratePerSecond,
		tokens:   ratePerSecond,
		lastCall: l.now(),
	}
	return nil
}

// Acquire takes one token for name, blocking until one is available or ctx
// is done.
func (l *Limiter) Acquire(ctx context.Context, name string) error {
	wait, err := l.reserve(name)
	if err != nil {
		return err
	}
	if wait <= 0 {
		return nil
	}

	if l.logger != nil {
		l.logger.Debug("Rate limit wait", "endpoint", name, "wait", wait)
	}
	metrics.PacingWait.WithLabelValues(name).Observe(wait.Seconds())
	return l.sleep(ctx, wait)
}

// reserve updates the bucket and returns how long the caller has to wait.
func (l *Limiter) reserve(name string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}

	now := l.now()
	elapsed := now.Sub(b.lastCall).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	b.tokens += elapsed * b.rate
	if b.tokens > b.rate {
		b.tokens = b.rate
	}

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		b.lastCall = now
		return 0, nil
	}

	wait := time.Duration((1.0 - b.tokens) / b.rate * float64(time.Second))
	b.tokens = 0
	b.lastCall = now.Add(wait)
	b.waits++
	return wait, nil
}

// Tokens returns the tokens currently stored for name, without refill.
func (l *Limiter) Tokens(name string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[name]
	if !ok {
		return 0, false
	}
	return b.tokens, true
}

// Stats returns per-endpoint rate and wait counts.
func (l *Limiter) Stats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	endpoints := make(map[string]interface{}, len(l.buckets))
	for name, b := range l.buckets {
		endpoints[name] = map[string]interface{}{
			"rate":  b.rate,
			"waits": b.waits,
		}
	}
	return map[string]interface{}{
		"endpoints": endpoints,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
