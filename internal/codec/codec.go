// Package codec provides compression and decompression for blob data.
package codec

import (
	"errors"
	"io"
)

// ErrUnknown is returned when a codec name is not registered.
var ErrUnknown = errors.New("codec: unknown codec")

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "lzw", "zst").
	// Returns empty string for no compression.
	Extension() string
	// Name returns the name the codec is registered under.
	Name() string
}
