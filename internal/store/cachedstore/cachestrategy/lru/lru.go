// Package lru implements an LRU cache eviction strategy.
package lru

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/lzwpack/internal/store/cachedstore/cachestrategy"
)

// Compile-time check that Strategy implements cachestrategy.Strategy.
var _ cachestrategy.Strategy = (*Strategy)(nil)

// Strategy implements LRU eviction over a fixed number of blobs.
type Strategy struct {
	cache *lru.Cache[string, []byte]
	bytes atomic.Int64

	mu sync.Mutex // serializes replacements so bytes stays exact
}

// New creates a new LRU strategy with the given capacity.
func New(capacity int) (*Strategy, error) {
	s := &Strategy{}
	c, err := lru.NewWithEvict(capacity, func(_ string, value []byte) {
		s.bytes.Add(-int64(len(value)))
	})
	if err != nil {
		return nil, err
	}
	s.cache = c
	return s, nil
}

// Get retrieves a value by key.
func (s *Strategy) Get(key string) ([]byte, bool) {
	return s.cache.Get(key)
}

// Add adds a value to the cache, replacing any value under the same key.
func (s *Strategy) Add(key string, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replacing a key does not invoke the eviction callback.
	if old, ok := s.cache.Peek(key); ok {
		s.bytes.Add(-int64(len(old)))
	}
	s.bytes.Add(int64(len(value)))
	return s.cache.Add(key, value)
}

// Remove drops key from the cache.
func (s *Strategy) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(key)
}

// Len returns the number of items in the cache.
func (s *Strategy) Len() int {
	return s.cache.Len()
}

// Bytes returns the total size of the cached values.
func (s *Strategy) Bytes() int64 {
	return s.bytes.Load()
}
