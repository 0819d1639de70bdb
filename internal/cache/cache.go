// internal/cache/cache.go

// Package cache provides the short-TTL result cache used by the expensive
// aggregate endpoints. Caching is a performance optimization, not a
// correctness dependency: the nop implementation serves the degraded
// always-miss path.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ResultCache is the narrow get/set surface handlers depend on.
type ResultCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// Key builds a deterministic cache key from an endpoint name and its query
// parameters. Parameters are sorted so equivalent requests hash identically.
func Key(endpoint string, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return endpoint + ":" + hex.EncodeToString(sum[:16])
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// LRUCache is an in-process ResultCache on an expiring LRU. The LRU evicts
// by capacity and by an upper-bound TTL; each entry additionally carries its
// own endpoint-specific expiry checked on read.
type LRUCache struct {
	lru *expirable.LRU[string, entry]
}

// NewLRUCache creates a cache holding at most size entries. maxTTL should be
// at least the largest per-endpoint TTL in use.
func NewLRUCache(size int, maxTTL time.Duration) *LRUCache {
	return &LRUCache{
		lru: expirable.NewLRU[string, entry](size, nil, maxTTL),
	}
}

// Get returns the cached payload, or a miss when absent or expired.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores a payload with its endpoint-specific TTL.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.lru.Add(key, entry{value: value, expiresAt: time.Now().Add(ttl)})
}

// Nop is the always-miss cache used when caching is disabled or the backing
// store is unavailable.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)         { return nil, false }
func (Nop) Set(string, []byte, time.Duration) {}
