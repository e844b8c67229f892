// Package store defines the storage backend interface for blob data.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/discochess/lzwpack/internal/codec"
)

var (
	// ErrNotFound is returned when a blob does not exist in the store.
	ErrNotFound = errors.New("store: blob not found")

	// ErrInvalidKey is returned for keys that are empty, absolute or
	// escape the blob namespace.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrNotListable is returned by wrappers whose underlying store does
	// not implement Lister.
	ErrNotListable = errors.New("store: listing not supported")
)

// BlobDir is the directory, or object prefix, that holds blobs.
const BlobDir = "blobs"

// Store defines the interface for storage backends.
// Implementations handle path formats, compression and storage details
// internally; callers always see uncompressed data.
type Store interface {
	// ReadBlob reads and decompresses the blob stored under key.
	ReadBlob(ctx context.Context, key string) ([]byte, error)

	// WriteBlob compresses data and stores it under key, replacing any
	// existing blob.
	WriteBlob(ctx context.Context, key string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Lister is implemented by stores that can enumerate their blobs.
type Lister interface {
	// Keys returns the keys of all stored blobs in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// ValidateKey checks that key is a clean relative slash-separated path.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key ||
		key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// ObjectName returns the slash-separated name a blob is stored under,
// relative to the store root.
func ObjectName(key string, c codec.Codec) string {
	name := BlobDir + "/" + key
	if ext := c.Extension(); ext != "" {
		name += "." + ext
	}
	return name
}

// KeyFromObjectName inverts ObjectName. ok is false for names outside the
// blob namespace or without the codec's extension.
func KeyFromObjectName(name string, c codec.Codec) (key string, ok bool) {
	key, ok = strings.CutPrefix(name, BlobDir+"/")
	if !ok {
		return "", false
	}
	if ext := c.Extension(); ext != "" {
		key, ok = strings.CutSuffix(key, "."+ext)
	}
	return key, ok && key != ""
}

// Encode compresses data with c.
func Encode(c codec.Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("compressing blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compressing blob: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses everything read from r with c.
func Decode(c codec.Codec, r io.Reader) ([]byte, error) {
	reader, err := c.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing blob: %w", err)
	}
	return data, nil
}
