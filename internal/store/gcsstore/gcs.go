// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Lister.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// bucket is the object access the store needs from a GCS bucket.
type bucket interface {
	NewReader(ctx context.Context, name string) (io.ReadCloser, error)
	NewWriter(ctx context.Context, name string) io.WriteCloser
	List(ctx context.Context, prefix string) ([]string, error)
}

// gcsBucket adapts a storage.BucketHandle to bucket.
type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b gcsBucket) NewReader(ctx context.Context, name string) (io.ReadCloser, error) {
	return b.handle.Object(name).NewReader(ctx)
}

func (b gcsBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	return b.handle.Object(name).NewWriter(ctx)
}

func (b gcsBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
}

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket bucket
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: gcsBucket{handle: client.Bucket(bucketName)},
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// ReadBlob reads and decompresses the blob stored under key.
func (s *Store) ReadBlob(ctx context.Context, key string) ([]byte, error) {
	// Check for cancellation before starting.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	reader, err := s.bucket.NewReader(ctx, s.objectName(key))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	return store.Decode(s.codec, reader)
}

// WriteBlob compresses data and uploads it under key. The object becomes
// visible only once the upload completes.
func (s *Store) WriteBlob(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	compressed, err := store.Encode(s.codec, data)
	if err != nil {
		return err
	}

	w := s.bucket.NewWriter(ctx, s.objectName(key))
	if _, err := w.Write(compressed); err != nil {
		w.Close()
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing blob: %w", err)
	}
	return nil
}

// Keys lists the blobs under the store prefix.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	names, err := s.bucket.List(ctx, s.prefix+store.BlobDir+"/")
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	var keys []string
	for _, name := range names {
		if key, ok := store.KeyFromObjectName(strings.TrimPrefix(name, s.prefix), s.codec); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// objectName returns the full object name for a blob.
func (s *Store) objectName(key string) string {
	return s.prefix + store.ObjectName(key, s.codec)
}
