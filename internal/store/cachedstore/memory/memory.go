// Package memory implements an in-memory cache backend.
package memory

import (
	"sync/atomic"

	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/store/cachedstore"
	"github.com/discochess/lzwpack/internal/store/cachedstore/cachestrategy"
)

// Compile-time check that Backend implements cachedstore.Backend.
var _ cachedstore.Backend = (*Backend)(nil)

// Backend is a thread-safe in-memory cache backend.
type Backend struct {
	strategy  cachestrategy.Strategy
	collector stats.Collector
	maxBlob   int

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Backend.
type Option func(*Backend)

// WithMaxBlobSize skips caching blobs larger than n bytes.
func WithMaxBlobSize(n int) Option {
	return func(b *Backend) {
		b.maxBlob = n
	}
}

// New creates a new memory backend with the given eviction strategy.
// The collector is optional; if nil, a no-op collector is used.
func New(strategy cachestrategy.Strategy, collector stats.Collector, opts ...Option) *Backend {
	if collector == nil {
		collector = stats.NewNoop()
	}
	b := &Backend{
		strategy:  strategy,
		collector: collector,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Get retrieves blob data from the cache.
func (b *Backend) Get(key string) ([]byte, bool) {
	val, ok := b.strategy.Get(key)
	if ok {
		b.hits.Add(1)
		b.collector.IncCounter(stats.MetricCacheHits, 1)
		return val, true
	}
	b.misses.Add(1)
	b.collector.IncCounter(stats.MetricCacheMisses, 1)
	return nil, false
}

// Set stores blob data in the cache. An oversized blob evicts any stale
// copy under the same key instead.
func (b *Backend) Set(key string, data []byte) {
	if b.maxBlob > 0 && len(data) > b.maxBlob {
		b.strategy.Remove(key)
	} else {
		b.strategy.Add(key, data)
	}
	b.collector.SetGauge(stats.MetricCacheSize, int64(b.strategy.Len()))
}

// Stats returns current cache statistics.
func (b *Backend) Stats() cachedstore.Stats {
	return cachedstore.Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Size:   b.strategy.Len(),
		Bytes:  b.strategy.Bytes(),
	}
}

// Len returns the number of items in the cache.
func (b *Backend) Len() int {
	return b.strategy.Len()
}
