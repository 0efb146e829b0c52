package ratelimiter

import (
	"sync"
	"time"
)

// fixedWindowState tracks one key's window.
type fixedWindowState struct {
	count       int
	windowStart time.Time
}

// KeyedFixedWindow implements the RateLimiter interface using a fixed window
// counter per key. Each key gets its own window, so one noisy client cannot
// exhaust the budget of others.
type KeyedFixedWindow struct {
	limit  int
	window time.Duration
	states map[string]*fixedWindowState
	mutex  sync.Mutex
}

// NewKeyedFixedWindow creates a new KeyedFixedWindow.
// limit: the maximum number of requests allowed per key in the window.
// window: the duration of the time window.
func NewKeyedFixedWindow(limit int, window time.Duration) *KeyedFixedWindow {
	return &KeyedFixedWindow{
		limit:  limit,
		window: window,
		states: make(map[string]*fixedWindowState),
	}
}

// Allow checks if a request for the given key is allowed. Expired windows
// are reset in place, and keys whose window has long passed are evicted so
// the map does not grow with every client ever seen.
func (kfw *KeyedFixedWindow) Allow(key string) bool {
	kfw.mutex.Lock()
	defer kfw.mutex.Unlock()

	now := time.Now()
	kfw.evictStale(now)

	state, ok := kfw.states[key]
	if !ok {
		state = &fixedWindowState{windowStart: now}
		kfw.states[key] = state
	}

	if now.After(state.windowStart.Add(kfw.window)) {
		state.windowStart = now
		state.count = 0
	}

	if state.count < kfw.limit {
		state.count++
		return true
	}

	return false
}

// evictStale drops keys idle for more than two windows. Caller holds the
// mutex.
func (kfw *KeyedFixedWindow) evictStale(now time.Time) {
	for key, state := range kfw.states {
		if now.Sub(state.windowStart) > 2*kfw.window {
			delete(kfw.states, key)
		}
	}
}
