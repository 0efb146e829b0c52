package ratelimiter

import (
	"sync"
	"time"
)

// tokenBucketState tracks one key's bucket.
type tokenBucketState struct {
	tokens        float64
	lastTokenTime time.Time
}

// KeyedTokenBucket implements the RateLimiter interface using a token bucket
// per key. It allows bursts up to the bucket's capacity.
type KeyedTokenBucket struct {
	rate     float64
	capacity float64
	states   map[string]*tokenBucketState
	mutex    sync.Mutex
}

// NewKeyedTokenBucket creates a new KeyedTokenBucket.
// rate: the number of tokens generated per second per key.
// capacity: the maximum number of tokens (burst size).
func NewKeyedTokenBucket(rate float64, capacity int) *KeyedTokenBucket {
	return &KeyedTokenBucket{
		rate:     rate,
		capacity: float64(capacity),
		states:   make(map[string]*tokenBucketState),
	}
}

// Allow checks if a request for the given key is allowed. The key's bucket
// is refilled based on elapsed time before one token is consumed. Buckets
// idle long enough to have refilled completely are evicted.
func (ktb *KeyedTokenBucket) Allow(key string) bool {
	ktb.mutex.Lock()
	defer ktb.mutex.Unlock()

	now := time.Now()
	ktb.evictStale(now)

	state, ok := ktb.states[key]
	if !ok {
		// New keys start with a full bucket.
		state = &tokenBucketState{tokens: ktb.capacity, lastTokenTime: now}
		ktb.states[key] = state
	}

	elapsed := now.Sub(state.lastTokenTime)
	if elapsed > 0 {
		state.tokens += elapsed.Seconds() * ktb.rate
		if state.tokens > ktb.capacity {
			state.tokens = ktb.capacity
		}
		state.lastTokenTime = now
	}

	if state.tokens >= 1 {
		state.tokens--
		return true
	}

	return false
}

// evictStale drops keys whose bucket has been full for a while. A full
// bucket carries no history, so a fresh state is equivalent. Caller holds
// the mutex.
func (ktb *KeyedTokenBucket) evictStale(now time.Time) {
	if ktb.rate <= 0 {
		return
	}
	refillTime := time.Duration(2 * ktb.capacity / ktb.rate * float64(time.Second))
	for key, state := range ktb.states {
		if now.Sub(state.lastTokenTime) > refillTime {
			delete(ktb.states, key)
		}
	}
}
