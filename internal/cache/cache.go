// Package cache provides a Redis-backed answer cache keyed by normalized
// question text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when no cached answer exists for a question.
var ErrMiss = errors.New("cache miss")

// CachedAnswer is the value stored per question.
type CachedAnswer struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	NumChunks int      `json:"num_chunks"`
}

// AnswerCache stores generated answers so repeated questions skip the
// retrieval and generation stages.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnswerCache creates a cache with the given TTL. A non-positive TTL
// defaults to one hour.
func NewAnswerCache(client *redis.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Key derives the cache key from the question. Case and surrounding
// whitespace do not affect the key, so trivially restated questions hit the
// same entry.
func Key(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return "cvrag:answer:" + hex.EncodeToString(sum[:])
}

// Get returns the cached answer for a question, or ErrMiss.
func (c *AnswerCache) Get(ctx context.Context, question string) (*CachedAnswer, error) {
	raw, err := c.client.Get(ctx, Key(question)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var cached CachedAnswer
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// Set stores an answer for a question.
func (c *AnswerCache) Set(ctx context.Context, question string, answer *CachedAnswer) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(question), raw, c.ttl).Err()
}

// Invalidate drops every cached answer. It is called after ingestion so
// stale answers do not outlive the documents they came from.
func (c *AnswerCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "cvrag:answer:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
