// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/discochess/lzwpack/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Lister.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// Store is an in-memory store for testing. Blobs are held uncompressed.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	reads int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		blobs: make(map[string][]byte),
	}
}

// ReadBlob returns a copy of the blob stored under key.
func (s *Store) ReadBlob(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	data, ok := s.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(data), nil
}

// WriteBlob stores a copy of data under key, so caller mutations do not
// affect the store.
func (s *Store) WriteBlob(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte{}, data...)
	return nil
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.blobs)), nil
}

// Reads returns the number of ReadBlob calls, for asserting cache behaviour.
func (s *Store) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
