// Package ratelimiter throttles outbound requests per remote host.
package ratelimiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

const defaultBurstSize = 1

// RateLimiterConfig defines token bucket limiter settings.
type RateLimiterConfig struct {
	// RequestsPerSecond of zero or less disables limiting.
	RequestsPerSecond float64
	BurstSize         int
}

type limiterEntry struct {
	limiter *rate.Limiter
}

// KeyedLimiter applies token bucket limits independently per key.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*limiterEntry
	config  RateLimiterConfig
}

// NewKeyedLimiter creates a keyed in-memory limiter.
func NewKeyedLimiter(cfg RateLimiterConfig) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*limiterEntry),
		config:  normalizeConfig(cfg),
	}
}

// Enabled reports whether the limiter throttles at all.
func (k *KeyedLimiter) Enabled() bool {
	return k.config.RequestsPerSecond > 0
}

// Wait blocks until a token for key is available or ctx is done.
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	if !k.Enabled() {
		return ctx.Err()
	}
	return k.getOrCreateEntry(normalizeKey(key)).limiter.Wait(ctx)
}

// Allow checks and consumes a token for the supplied key without waiting.
func (k *KeyedLimiter) Allow(key string) bool {
	if !k.Enabled() {
		return true
	}
	return k.getOrCreateEntry(normalizeKey(key)).limiter.Allow()
}

// Len returns the number of active keys.
func (k *KeyedLimiter) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.entries)
}

func normalizeConfig(cfg RateLimiterConfig) RateLimiterConfig {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = defaultBurstSize
	}
	return cfg
}

func normalizeKey(key string) string {
	if key == "" {
		return "unknown"
	}
	return key
}

func (k *KeyedLimiter) getOrCreateEntry(key string) *limiterEntry {
	k.mu.RLock()
	entry, found := k.entries[key]
	k.mu.RUnlock()
	if found {
		return entry
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	entry, found = k.entries[key]
	if found {
		return entry
	}

	entry = &limiterEntry{
		limiter: rate.NewLimiter(rate.Limit(k.config.RequestsPerSecond), k.config.BurstSize),
	}
	k.entries[key] = entry
	return entry
}
