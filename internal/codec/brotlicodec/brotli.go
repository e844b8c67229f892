// Package brotlicodec provides a brotli compression codec.
package brotlicodec

import (
	"io"

	"github.com/andybalholm/brotli"

	"github.com/discochess/lzwpack/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements brotli compression.
type Codec struct {
	level int
}

// Option configures a Codec.
type Option func(*Codec)

// WithLevel sets the quality, brotli.BestSpeed through
// brotli.BestCompression.
func WithLevel(level int) Option {
	return func(c *Codec) {
		c.level = level
	}
}

// New returns a new brotli codec.
func New(opts ...Option) *Codec {
	c := &Codec{level: brotli.DefaultCompression}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reader wraps r to decompress brotli data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}

// Writer wraps w to compress data with brotli.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(w, c.level), nil
}

// Extension returns "br".
func (c *Codec) Extension() string {
	return "br"
}

// Name returns "brotli".
func (c *Codec) Name() string {
	return "brotli"
}
