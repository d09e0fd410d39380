package service

import (
	"sync"
	"time"

	"github.com/B1acB1rd/SolSwap/internal/config"
)

type idempotencyEntry struct {
	key      string
	storedAt time.Time
	result   *TurnResult
}

// IdempotencyCache deduplicates turns re-delivered with the same
// caller-supplied key. Entries expire after a fixed window, and the cache
// evicts oldest-first once the entry cap is exceeded.
type IdempotencyCache struct {
	mu         sync.Mutex
	entries    map[string]*idempotencyEntry
	order      []string // insertion order, for oldest-first eviction
	ttl        time.Duration
	maxEntries int
}

func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{
		entries:    make(map[string]*idempotencyEntry),
		ttl:        config.IdempotencyTTL,
		maxEntries: config.IdempotencyMaxEntries,
	}
}

// Check returns the cached result for key if an unexpired entry exists.
// A hit must be returned verbatim with no recomputation, so results are
// deep copies both in and out.
func (c *IdempotencyCache) Check(key string) (*TurnResult, bool) {
	if key == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result.clone(), true
}

// Store records the turn result against key.
func (c *IdempotencyCache) Store(key string, result *TurnResult) {
	if key == "" || result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = &idempotencyEntry{
		key:      key,
		storedAt: time.Now(),
		result:   result.clone(),
	}

	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Sweep drops expired entries. Called by the cleanup job.
func (c *IdempotencyCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	kept := c.order[:0]
	for _, key := range c.order {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		if time.Since(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
	return removed
}

// Len reports the current entry count.
func (c *IdempotencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
