// Package ratelimit provides per-key token bucket rate limiting for MCP tools.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter is a token-bucket rate limiter with an independent bucket per
// key. A fresh key starts with a full burst; tokens refill continuously
// at the configured rate and never accumulate past the burst size. Safe
// for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64          // tokens per second
	burst   int              // bucket capacity, also the initial fill
	nowFunc func() time.Time // injectable clock for testing
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

// NewLimiter creates a limiter granting rate tokens per second with the
// given burst capacity.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow reports whether a request for the key may proceed, consuming
// one token when it does.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: float64(l.burst), refilled: now}
		l.buckets[key] = b
	}
	l.refill(b, now)

	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// refill credits the tokens earned since the last refill, capped at the
// burst size.
func (l *Limiter) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.refilled).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += l.rate * elapsed
	if max := float64(l.burst); b.tokens > max {
		b.tokens = max
	}
	b.refilled = now
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
// Decide and report fire on every conversation turn, so their limits
// are the most generous. Learn is the most expensive path and gets
// the tightest budget.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"reflex_decide":   NewLimiter(2.0, 20),      // 120/minute, burst 20
		"reflex_report":   NewLimiter(2.0, 20),      // 120/minute, burst 20
		"reflex_evaluate": NewLimiter(1.0, 5),       // 60/minute, burst 5
		"reflex_metrics":  NewLimiter(1.0, 10),      // 60/minute, burst 10
		"reflex_learn":    NewLimiter(10.0/60.0, 3), // 10/minute, burst 3
		"reflex_patterns": NewLimiter(30.0/60.0, 5), // 30/minute, burst 5
	}
}

// CheckLimit enforces the limiter configured for a tool name. Tools
// without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}
