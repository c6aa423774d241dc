// Package infra provides shared infrastructure components used across
// the application: chart result caching and LLM rate limiting.
package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// --- Chart cache ---

// chartEntry holds a cached chart with expiration.
type chartEntry struct {
	res       *models.BaziResult
	expiresAt time.Time
}

// ChartCache is a thread-safe cache for computed charts. Chart computation
// is deterministic for a given birth moment, so entries never go stale in
// the semantic sense; the TTL only bounds memory growth.
type ChartCache struct {
	mu      sync.RWMutex
	entries map[string]chartEntry
	ttl     time.Duration
}

// NewChartCache creates a chart cache with the given entry TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		entries: make(map[string]chartEntry),
		ttl:     ttl,
	}
}

// chartKey identifies a birth moment. Gender affects period direction but
// not the chart itself, so it is excluded from the key.
func chartKey(in models.BirthInput) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", in.Year, in.Month, in.Day, in.Hour, in.Minute)
}

// Get retrieves a cached chart. Returns nil, false if not found or expired.
func (c *ChartCache) Get(in models.BirthInput) (*models.BaziResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[chartKey(in)]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.res, true
}

// Set stores a computed chart.
func (c *ChartCache) Set(in models.BirthInput, res *models.BaziResult) {
	c.mu.Lock()
	c.entries[chartKey(in)] = chartEntry{
		res:       res,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Len reports the number of entries, expired included.
func (c *ChartCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush removes all entries.
func (c *ChartCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]chartEntry)
	c.mu.Unlock()
}

// Cleanup removes expired entries. Can be called periodically.
func (c *ChartCache) Cleanup() {
	c.mu.Lock()
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting, used to keep
// interpretation requests within upstream LLM quota.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Check again after a short sleep.
		}
	}
}

// Allow reports whether a token is available without blocking.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
