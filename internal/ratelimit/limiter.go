// Package ratelimit provides per-key token bucket rate limiting for MCP tools.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter implements a per-key token bucket rate limiter. Requests may
// cost more than one token. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64          // tokens per second
	burst   int              // max bucket size (also initial token count)
	nowFunc func() time.Time // injectable clock for testing
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Burst returns the bucket size.
func (l *Limiter) Burst() int {
	return l.burst
}

// Allow takes one token for key. It reports false when the bucket is empty.
func (l *Limiter) Allow(key string) bool {
	return l.AllowN(key, 1)
}

// AllowN takes n tokens for key if that many are available. Nothing is
// taken on refusal, so a request costing more than the burst size is
// always refused.
func (l *Limiter) AllowN(key string, n float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}

	if b.tokens < n {
		return false
	}
	b.tokens -= n
	return true
}

// Tool names with default limits.
const (
	ToolGenerate = "contagion_generate"
	ToolStep     = "contagion_step"
	ToolRun      = "contagion_run"
	ToolStats    = "contagion_stats"
	ToolGraph    = "contagion_graph"

	// DaysBudget is the shared bucket for simulated days across step
	// and run calls; a call costs one token per day requested.
	DaysBudget = "simulated_days"
)

// ToolLimiters maps tool names (and DaysBudget) to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		ToolGenerate: NewLimiter(10.0/60.0, 3), // 10/minute, burst 3
		ToolStep:     NewLimiter(5.0, 20),      // 300/minute, burst 20
		ToolRun:      NewLimiter(10.0/60.0, 3), // 10/minute, burst 3
		ToolStats:    NewLimiter(1.0, 10),      // 60/minute, burst 10
		ToolGraph:    NewLimiter(30.0/60.0, 5), // 30/minute, burst 5
		DaysBudget:   NewLimiter(200.0, 5000),  // 200 days/second, burst 5000
	}
}

// CheckLimit checks the rate limit for a given tool name.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	return CheckCost(limiters, toolName, 1)
}

// CheckCost charges cost tokens against the named limiter.
func CheckCost(limiters ToolLimiters, name string, cost float64) error {
	limiter, ok := limiters[name]
	if !ok {
		return nil
	}
	if cost > float64(limiter.Burst()) {
		return fmt.Errorf("request for %s costs %.0f, more than the limit of %d", name, cost, limiter.Burst())
	}
	if !limiter.AllowN(name, cost) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", name)
	}
	return nil
}
