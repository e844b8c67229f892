// Package s2codec provides an S2 (Snappy-compatible) compression codec.
package s2codec

import (
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/discochess/lzwpack/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements S2 stream compression.
type Codec struct {
	better bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithBetterCompression trades speed for a smaller output.
func WithBetterCompression() Option {
	return func(c *Codec) {
		c.better = true
	}
}

// New returns a new S2 codec.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reader wraps r to decompress an S2 stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

// Writer wraps w to compress data into an S2 stream.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	opts := []s2.WriterOption{s2.WriterConcurrency(1)}
	if c.better {
		opts = append(opts, s2.WriterBetterCompression())
	}
	return s2.NewWriter(w, opts...), nil
}

// Extension returns "s2".
func (c *Codec) Extension() string {
	return "s2"
}

// Name returns "s2".
func (c *Codec) Name() string {
	return "s2"
}
