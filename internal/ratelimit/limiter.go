// Package ratelimit provides per-tool rate limiting for the MCP server.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wfvining/motion-ca/internal/constants"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by CheckLimit when a tool is over its limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter keeps one token bucket per key. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	nowFunc func() time.Time // injectable clock for testing
}

// NewLimiter creates a rate limiter refilling perMinute tokens per minute
// with the given burst. Each key starts with a full burst.
func NewLimiter(perMinute float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow reports whether a request for key may proceed now, consuming a
// token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	now := l.nowFunc()
	l.mu.Unlock()

	return b.AllowN(now, 1)
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
// Sweeps run many simulations per call and get the tighter budget.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"motionca_run":     NewLimiter(constants.RunToolRate, 10),
		"motionca_sweep":   NewLimiter(constants.SweepToolRate, 2),
		"motionca_results": NewLimiter(constants.RunToolRate, 10),
	}
}

// CheckLimit checks the rate limit for a given tool name.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}

	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}

	return nil
}
