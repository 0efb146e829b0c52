package ratelimiter

import (
	"testing"
	"time"
)

func TestKeyedFixedWindow_Limit(t *testing.T) {
	limiter := NewKeyedFixedWindow(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("request over limit allowed")
	}
}

func TestKeyedFixedWindow_KeysIndependent(t *testing.T) {
	limiter := NewKeyedFixedWindow(1, time.Hour)

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first key denied")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("first key allowed over limit")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("second key denied by first key's usage")
	}
}

func TestKeyedFixedWindow_WindowReset(t *testing.T) {
	limiter := NewKeyedFixedWindow(1, 10*time.Millisecond)

	if !limiter.Allow("k") {
		t.Fatal("first request denied")
	}
	if limiter.Allow("k") {
		t.Fatal("second request allowed within window")
	}

	time.Sleep(20 * time.Millisecond)
	if !limiter.Allow("k") {
		t.Error("request denied after window reset")
	}
}

func TestKeyedTokenBucket_Burst(t *testing.T) {
	limiter := NewKeyedTokenBucket(0.001, 2)

	if !limiter.Allow("k") || !limiter.Allow("k") {
		t.Fatal("burst within capacity denied")
	}
	if limiter.Allow("k") {
		t.Error("request over capacity allowed")
	}
}

func TestKeyedTokenBucket_Refill(t *testing.T) {
	limiter := NewKeyedTokenBucket(100, 1)

	if !limiter.Allow("k") {
		t.Fatal("first request denied")
	}
	if limiter.Allow("k") {
		t.Fatal("request allowed with empty bucket")
	}

	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("k") {
		t.Error("request denied after refill")
	}
}
