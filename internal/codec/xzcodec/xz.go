// Package xzcodec provides an xz (LZMA2) compression codec.
package xzcodec

import (
	"io"

	"github.com/ulikunitz/xz"

	"github.com/discochess/lzwpack/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements xz compression.
type Codec struct {
	dictCap int
}

// Option configures a Codec.
type Option func(*Codec)

// WithDictCap sets the LZMA dictionary capacity in bytes.
func WithDictCap(n int) Option {
	return func(c *Codec) {
		c.dictCap = n
	}
}

// New returns a new xz codec.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reader wraps r to decompress xz data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

// Writer wraps w to compress data with xz.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	cfg := xz.WriterConfig{DictCap: c.dictCap}
	return cfg.NewWriter(w)
}

// Extension returns "xz".
func (c *Codec) Extension() string {
	return "xz"
}

// Name returns "xz".
func (c *Codec) Name() string {
	return "xz"
}
