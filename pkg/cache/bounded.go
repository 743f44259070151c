// Package cache provides a fixed-capacity in-process LRU cache for
// computed search results.
package cache

import (
	"container/list"
	"sync"
)

// Bounded maps query keys to previously computed values, evicting the
// least-recently-used entry once capacity is reached. Recency is updated
// on both Get and Put. No operation blocks or fails; absence is expressed
// by Contains returning false.
//
// Bounded judges presence only. Whether a cached value is still fresh
// enough to serve is the orchestrator's decision.
//
// Safe for concurrent use. One shared instance is created at startup and
// used by every request.
type Bounded[V any] struct {
	capacity int

	mu      sync.Mutex
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type boundedEntry[V any] struct {
	key   string
	value V
}

// NewBounded creates a cache holding at most capacity entries.
// Capacity must be positive.
func NewBounded[V any](capacity int) *Bounded[V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	return &Bounded[V]{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Contains reports whether key is cached without changing recency.
func (c *Bounded[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	return ok
}

// Get returns the cached value for key and marks it most recently used.
func (c *Bounded[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*boundedEntry[V]).value, true
}

// Put stores value under key and marks it most recently used. When the
// cache is full and key is new, the least-recently-used entry is evicted
// before insertion.
func (c *Bounded[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*boundedEntry[V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*boundedEntry[V]).key)
		}
	}

	c.entries[key] = c.order.PushFront(&boundedEntry[V]{key: key, value: value})
}

// Len returns the number of cached entries.
func (c *Bounded[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
