package application

import (
	"sync"
	"time"
)

// messageCache stores recently generated motivational text so repeated
// requests for the same focus context do not re-hit the external content
// collaborator while the entry is fresh.
type messageCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]messageCacheEntry
}

type messageCacheEntry struct {
	text      string
	expiresAt time.Time
}

func newMessageCache(ttl time.Duration, maxEntries int, now func() time.Time) *messageCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 32
	}
	if now == nil {
		now = time.Now
	}
	return &messageCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]messageCacheEntry),
	}
}

func (c *messageCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.text, true
}

func (c *messageCache) Put(key, text string) {
	if c == nil || text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictExpiredLocked()
	}
	if len(c.entries) >= c.maxEntries {
		// Still full after dropping stale entries: drop an arbitrary one to
		// keep the cache bounded.
		for stale := range c.entries {
			delete(c.entries, stale)
			break
		}
	}

	c.entries[key] = messageCacheEntry{
		text:      text,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *messageCache) evictExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
