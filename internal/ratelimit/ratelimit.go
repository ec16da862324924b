// Package ratelimit implements the Execution stage's per-resource
// request cap, ported from
// original_source/utils/execution_utils.py's check_rate_limit. This is
// a fixed request-count-per-window counter with exact "oldest request
// falls out of the window" retry_after semantics, which is a different
// shape than golang.org/x/time/rate's token bucket — spec §4.12
// requires the window-count invariant verbatim, so it is hand-rolled
// here. Nothing in this module paces outbound calls toward external
// APIs; internal/llm/anthropicport does not throttle its requests.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is check_rate_limit's return shape.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // zero when Allowed
	Remaining  int
}

// Limiter tracks request timestamps per resource within a fixed
// window. Safe for concurrent use.
type Limiter struct {
	mu            sync.Mutex
	requests      map[string][]time.Time
	maxRequests   int
	windowSeconds int
	now           func() time.Time
}

// New returns a Limiter enforcing maxRequests per windowSeconds,
// matching spec's default of 100 requests per 60-second window.
func New(maxRequests, windowSeconds int) *Limiter {
	return &Limiter{
		requests:      make(map[string][]time.Time),
		maxRequests:   maxRequests,
		windowSeconds: windowSeconds,
		now:           time.Now,
	}
}

// Check evaluates whether resource may make another request right
// now, pruning requests that have aged out of the window first. A
// successful check records the request; a denied check does not.
func (l *Limiter) Check(resource string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-time.Duration(l.windowSeconds) * time.Second)

	kept := l.requests[resource][:0:0]
	for _, t := range l.requests[resource] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.requests[resource] = kept

	if len(kept) >= l.maxRequests {
		oldest := kept[0]
		for _, t := range kept[1:] {
			if t.Before(oldest) {
				oldest = t
			}
		}
		retryAfter := oldest.Add(time.Duration(l.windowSeconds) * time.Second).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Decision{Allowed: false, RetryAfter: retryAfter, Remaining: 0}
	}

	l.requests[resource] = append(l.requests[resource], now)
	return Decision{Allowed: true, Remaining: l.maxRequests - len(kept) - 1}
}
