package cachedstore

import (
	"context"
	"slices"

	"github.com/discochess/lzwpack/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with a read-through, write-through cache of
// decompressed blobs.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// ReadBlob reads a blob, checking the cache first. Callers must not modify
// the returned slice.
func (s *Store) ReadBlob(ctx context.Context, key string) ([]byte, error) {
	// Check cache first.
	if data, ok := s.backend.Get(key); ok {
		return data, nil
	}

	// Cache miss - read from underlying store.
	data, err := s.underlying.ReadBlob(ctx, key)
	if err != nil {
		return nil, err
	}

	s.backend.Set(key, data)
	return data, nil
}

// WriteBlob writes to the underlying store, then caches a private copy of
// data.
func (s *Store) WriteBlob(ctx context.Context, key string, data []byte) error {
	if err := s.underlying.WriteBlob(ctx, key, data); err != nil {
		return err
	}
	s.backend.Set(key, slices.Clone(data))
	return nil
}

// Keys lists the underlying store, if it supports listing.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	lister, ok := s.underlying.(store.Lister)
	if !ok {
		return nil, store.ErrNotListable
	}
	return lister.Keys(ctx)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
