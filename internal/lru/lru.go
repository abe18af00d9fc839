// Package lru implements the byte-weighted cache that holds decoded entry
// payloads between Get calls.
//
// Unlike a count-bounded LRU, capacity is the sum of inserted weights.
// Recency order is tracked by hashicorp's simplelru; the weight accounting
// and eviction loop live here.
package lru

import (
	"math"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type record struct {
	data   []byte
	weight int64
}

// Cache is a weight-bounded LRU keyed by entry name. A single mutex guards
// every operation, so it is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	order    *simplelru.LRU[string, record]
	capacity int64
	size     int64
}

// New creates a cache holding at most capacity bytes of inserted weight.
func New(capacity int64) *Cache {
	// The count bound never triggers; eviction is driven by weight in Put.
	order, err := simplelru.NewLRU[string, record](math.MaxInt32, nil)
	if err != nil {
		panic(err) // NewLRU only fails for non-positive sizes
	}
	return &Cache{order: order, capacity: capacity}
}

// Get returns the cached value for key and marks it most recently used.
// The returned slice is shared; callers must copy before handing it out.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.order.Get(key)
	if !ok {
		return nil, false
	}
	return rec.data, true
}

// Put inserts value under key with the given weight. An existing record for
// key is evicted first. Least-recently-used records are evicted until the
// new total fits the capacity; a value heavier than the whole capacity is
// not inserted at all.
func (c *Cache) Put(key string, value []byte, weight int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.order.Peek(key); ok {
		c.order.Remove(key)
		c.size -= rec.weight
	}
	if weight > c.capacity {
		return
	}
	for c.size+weight > c.capacity && c.order.Len() > 0 {
		_, old, _ := c.order.RemoveOldest()
		c.size -= old.weight
	}
	c.order.Add(key, record{data: value, weight: weight})
	c.size += weight
}

// Remove evicts the record for key, if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.order.Peek(key); ok {
		c.order.Remove(key)
		c.size -= rec.weight
	}
}

// Clear removes every record.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Purge()
	c.size = 0
}

// Size returns the total weight currently resident.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
