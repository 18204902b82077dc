// Package cache holds rendered responses for a while.
package cache

import (
	"sync"
	"time"
)

// Timed is a cache that invalidates elements on a timer basis. It is safe for
// concurrent use.
type Timed struct {
	ttl time.Duration

	mu    sync.Mutex
	cache map[string]element
}

// element holds a timestamped value to save.
type element struct {
	value    []byte
	creation time.Time
}

// NewTimed creates a new Timed cache where elements will be invalidated after
// a time in cache corresponding to TTL.
func NewTimed(ttl time.Duration) *Timed {
	return &Timed{
		ttl:   ttl,
		cache: make(map[string]element),
	}
}

// Set assigns a value to a key. The cache keeps its own copy of val.
func (c *Timed) Set(key string, val []byte) {
	c.set(key, val, time.Now())
}

func (c *Timed) set(key string, val []byte, t time.Time) {
	stored := make([]byte, len(val))
	copy(stored, val)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = element{
		value:    stored,
		creation: t,
	}
}

// Get retrieves a value for a key. The value may not exist or have expired, in
// which case ok will be false.
func (c *Timed) Get(key string) (value []byte, ok bool) {
	return c.get(key, time.Now())
}

func (c *Timed) get(key string, t time.Time) (value []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if t.Sub(el.creation) > c.ttl {
		delete(c.cache, key)
		return nil, false
	}
	return el.value, true
}

// Purge drops every expired element and returns how many remain.
func (c *Timed) Purge() int {
	return c.purge(time.Now())
}

func (c *Timed) purge(t time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.cache {
		if t.Sub(el.creation) > c.ttl {
			delete(c.cache, key)
		}
	}
	return len(c.cache)
}
