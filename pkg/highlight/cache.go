package highlight

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the capacity used when NewCache is given zero.
const DefaultCacheSize = 256

// Cache is a bounded LRU cache of tokenized code blocks. It is safe for
// concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List
	stats    Stats
}

// Stats counts cache traffic since the cache was created.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

type cacheEntry struct {
	hash  uint64
	key   Key
	spans []Span
}

// NewCache returns a cache holding at most capacity entries. A capacity of
// zero or less selects DefaultCacheSize.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the spans cached for key and marks the entry as recently used.
func (c *Cache) Get(key Key) ([]Span, bool) {
	hash := key.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[hash]
	if !ok || elem.Value.(*cacheEntry).key != key {
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*cacheEntry).spans, true
}

// Put stores spans for key, evicting the least recently used entry when the
// cache is full.
func (c *Cache) Put(key Key, spans []Span) {
	hash := key.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[hash]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.key = key
		entry.spans = spans
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	c.entries[hash] = c.order.PushFront(&cacheEntry{hash: hash, key: key, spans: spans})
}

// evictOldest removes the least recently used entry. c.mu must be held.
func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	delete(c.entries, oldest.Value.(*cacheEntry).hash)
	c.order.Remove(oldest)
	c.stats.Evictions++
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Purge removes every entry. Statistics are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]*list.Element)
	c.order.Init()
}

// Stats returns a copy of the traffic counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}
