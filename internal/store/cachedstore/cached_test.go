package cachedstore

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/lzwpack/internal/store"
	"github.com/discochess/lzwpack/internal/store/memstore"
)

// fakeBackend is a simple in-memory backend for testing.
type fakeBackend struct {
	data   map[string][]byte
	hits   int64
	misses int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (b *fakeBackend) Get(key string) ([]byte, bool) {
	if data, ok := b.data[key]; ok {
		b.hits++
		return data, true
	}
	b.misses++
	return nil, false
}

func (b *fakeBackend) Set(key string, data []byte) {
	b.data[key] = data
}

func (b *fakeBackend) Stats() Stats {
	return Stats{Hits: b.hits, Misses: b.misses, Size: len(b.data)}
}

// unlistable hides the Lister implementation of a store.
type unlistable struct {
	store.Store
}

func TestStore_CacheHit(t *testing.T) {
	backend := newFakeBackend()
	underlying := memstore.New()

	// Pre-populate cache.
	backend.Set("00001/a", []byte("cached data"))

	s := New(underlying, backend)
	data, err := s.ReadBlob(context.Background(), "00001/a")
	if err != nil {
		t.Fatalf("ReadBlob() error = %v", err)
	}
	if string(data) != "cached data" {
		t.Errorf("ReadBlob() = %q, want %q", data, "cached data")
	}
	if underlying.Reads() != 0 {
		t.Errorf("underlying reads = %d, want 0", underlying.Reads())
	}
	if s.Stats().Hits != 1 {
		t.Errorf("Stats().Hits = %d, want 1", s.Stats().Hits)
	}
}

func TestStore_CacheMiss(t *testing.T) {
	backend := newFakeBackend()
	underlying := memstore.New()
	ctx := context.Background()

	if err := underlying.WriteBlob(ctx, "00001/a", []byte("underlying data")); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}

	s := New(underlying, backend)
	for i := 0; i < 3; i++ {
		data, err := s.ReadBlob(ctx, "00001/a")
		if err != nil {
			t.Fatalf("ReadBlob() error = %v", err)
		}
		if string(data) != "underlying data" {
			t.Errorf("ReadBlob() = %q, want %q", data, "underlying data")
		}
	}

	if underlying.Reads() != 1 {
		t.Errorf("underlying reads = %d, want 1", underlying.Reads())
	}
	stats := s.Stats()
	if stats.Misses != 1 || stats.Hits != 2 {
		t.Errorf("Stats() = %+v, want 1 miss and 2 hits", stats)
	}
}

func TestStore_WriteThrough(t *testing.T) {
	backend := newFakeBackend()
	underlying := memstore.New()
	s := New(underlying, backend)
	ctx := context.Background()

	data := []byte("fresh")
	if err := s.WriteBlob(ctx, "00002/b", data); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}
	data[0] = 'X'

	got, err := s.ReadBlob(ctx, "00002/b")
	if err != nil {
		t.Fatalf("ReadBlob() error = %v", err)
	}
	if string(got) != "fresh" {
		t.Errorf("ReadBlob() = %q, want %q", got, "fresh")
	}
	if underlying.Reads() != 0 {
		t.Errorf("underlying reads = %d, want 0", underlying.Reads())
	}
}

func TestStore_NotFound(t *testing.T) {
	s := New(memstore.New(), newFakeBackend())

	_, err := s.ReadBlob(context.Background(), "99999/none")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadBlob() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Keys(t *testing.T) {
	underlying := memstore.New()
	ctx := context.Background()
	underlying.WriteBlob(ctx, "k1", nil)

	keys, err := New(underlying, newFakeBackend()).Keys(ctx)
	if err != nil || len(keys) != 1 {
		t.Errorf("Keys() = %v, %v", keys, err)
	}

	_, err = New(unlistable{underlying}, newFakeBackend()).Keys(ctx)
	if !errors.Is(err, store.ErrNotListable) {
		t.Errorf("Keys() error = %v, want ErrNotListable", err)
	}
}

func TestStats_HitRate(t *testing.T) {
	tests := []struct {
		name     string
		hits     int64
		misses   int64
		expected float64
	}{
		{"no requests", 0, 0, 0},
		{"all hits", 10, 0, 100},
		{"all misses", 0, 10, 0},
		{"50% hit rate", 5, 5, 50},
		{"75% hit rate", 3, 1, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stats{Hits: tt.hits, Misses: tt.misses}
			if got := s.HitRate(); got != tt.expected {
				t.Errorf("HitRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}
