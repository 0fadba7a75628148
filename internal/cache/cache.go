// Package cache provides a small in-process LRU cache for derived results.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the entry cap used when callers pass a non-positive size.
const DefaultSize = 1024

// LRU is a fixed-size in-process cache with add-if-absent semantics.
// Safe for concurrent use.
type LRU struct {
	inner *lru.Cache[string, any]
}

// NewLRU creates an LRU cache holding at most size entries.
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	inner, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &LRU{inner: inner}, nil
}

// Get returns the cached value for key, if present.
func (c *LRU) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Add stores the value only if the key is absent, so a stale recompute
// never overwrites a fresher entry.
func (c *LRU) Add(key string, value any) {
	c.inner.ContainsOrAdd(key, value)
}

// Invalidate drops the entry for key.
func (c *LRU) Invalidate(key string) {
	c.inner.Remove(key)
}
