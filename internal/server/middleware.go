package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/razmarrus/cv-rag/pkg/circuitbreaker"
	"github.com/razmarrus/cv-rag/pkg/logger"
	"github.com/razmarrus/cv-rag/pkg/ratelimiter"
)

// RequestLogger logs one line per request with method, path, status, and
// latency.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithPayload(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"client_ip":  c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}

// RateLimit rejects requests over the per-client budget with 429. Clients
// are keyed by IP.
func RateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

// Breaker fails fast with 503 while the downstream model APIs are
// considered unhealthy. Handler responses with 5xx status count as
// failures.
func Breaker(cb circuitbreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := cb.Execute(func() (interface{}, error) {
			c.Next()
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, fmt.Errorf("handler returned status %d", c.Writer.Status())
			}
			return nil, nil
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "service temporarily unavailable",
			})
		}
	}
}

// AdminAuth requires the configured bearer token. An empty token disables
// the admin surface entirely.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		auth := c.GetHeader("Authorization")
		provided, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || provided != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
