package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	rate       int // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket creates a new token bucket with the given rate and capacity
func NewTokenBucket(rate, capacity int) *TokenBucket {
	return newTokenBucket(rate, capacity, time.Now)
}

func newTokenBucket(rate, capacity int, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		rate:       rate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow checks if a request can be allowed and consumes a token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tokensToAdd := int(now.Sub(tb.lastRefill).Seconds() * float64(tb.rate))
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// refund returns a token taken by Allow that was not used.
func (tb *TokenBucket) refund() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.tokens < tb.capacity {
		tb.tokens++
	}
}

// Limiter throttles editor launches globally and per host.
// A nil *Limiter allows everything.
type Limiter struct {
	mu       sync.Mutex
	global   *TokenBucket
	perHost  map[string]*TokenBucket
	hostRate int
	burst    int
	now      func() time.Time
}

// New creates a limiter. A rate of 0 disables that limit; if both are 0
// New returns nil.
func New(globalRate, perHostRate, burst int) *Limiter {
	return NewWithClock(globalRate, perHostRate, burst, time.Now)
}

// NewWithClock is New with buckets refilled against now instead of the
// wall clock.
func NewWithClock(globalRate, perHostRate, burst int, now func() time.Time) *Limiter {
	if globalRate <= 0 && perHostRate <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	if now == nil {
		now = time.Now
	}
	l := &Limiter{
		perHost:  make(map[string]*TokenBucket),
		hostRate: perHostRate,
		burst:    burst,
		now:      now,
	}
	if globalRate > 0 {
		l.global = newTokenBucket(globalRate, burst, now)
	}
	return l
}

// Allow reports whether an open for host may proceed. A host over its own
// limit is denied without spending global budget.
func (l *Limiter) Allow(host string) bool {
	if l == nil {
		return true
	}
	var bucket *TokenBucket
	if l.hostRate > 0 {
		l.mu.Lock()
		var ok bool
		bucket, ok = l.perHost[host]
		if !ok {
			bucket = newTokenBucket(l.hostRate, l.burst, l.now)
			l.perHost[host] = bucket
		}
		l.mu.Unlock()
		if !bucket.Allow() {
			return false
		}
	}
	if l.global != nil && !l.global.Allow() {
		if bucket != nil {
			bucket.refund()
		}
		return false
	}
	return true
}
