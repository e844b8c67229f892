package lzwpack

import (
	"bytes"
	"io"

	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/store"
)

// Code width bounds of LZW streams.
const (
	MinWidth        = lzwcodec.MinWidth
	DefaultMaxWidth = lzwcodec.DefaultMaxWidth
	MaxWidthLimit   = lzwcodec.MaxWidthLimit
)

// StreamOption configures an LZW stream.
type StreamOption = lzwcodec.Option

// WithMaxWidth bounds the code width of a stream. Both sides of a stream
// must use the same value.
func WithMaxWidth(width uint) StreamOption {
	return lzwcodec.WithMaxWidth(width)
}

// NewWriter returns a writer that compresses to w. Close must be called to
// end the stream; it does not close w.
func NewWriter(w io.Writer, opts ...StreamOption) (io.WriteCloser, error) {
	return lzwcodec.New(opts...).Writer(w)
}

// NewReader returns a reader that decompresses the stream read from r.
func NewReader(r io.Reader, opts ...StreamOption) (io.ReadCloser, error) {
	return lzwcodec.New(opts...).Reader(r)
}

// Compress returns data as a complete LZW stream.
func Compress(data []byte, opts ...StreamOption) ([]byte, error) {
	return store.Encode(lzwcodec.New(opts...), data)
}

// Decompress returns the data of a complete LZW stream.
func Decompress(data []byte, opts ...StreamOption) ([]byte, error) {
	return store.Decode(lzwcodec.New(opts...), bytes.NewReader(data))
}
