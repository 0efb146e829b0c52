// Package ratelimiter provides per-client request limiting keyed by an
// arbitrary string, typically the client IP.
package ratelimiter

// RateLimiter is the interface for keyed rate limiting.
type RateLimiter interface {
	// Allow returns true if a request for the given key is allowed.
	Allow(key string) bool
}
