// Package lzwcodec provides the framed LZW stream codec.
//
// A stream is a sequence of sessions over the byte alphabet. Each session
// is an independent LZW code sequence ended by ResetCode, and the stream is
// ended by StopCode. Codes are packed MSB-first and widen from MinWidth up
// to the configured maximum; the final byte is zero padded.
package lzwcodec

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/lzw"
	"github.com/discochess/lzwpack/internal/stats"
)

// Stream framing codes.
const (
	// ResetCode ends a session; the next code starts a fresh dictionary.
	ResetCode = 256
	// StopCode ends the stream.
	StopCode = 257
	// SymbolsCount is the alphabet size: 256 byte values plus the markers.
	SymbolsCount = 258
)

// Code width bounds.
const (
	MinWidth        = 9
	DefaultMaxWidth = 12
	MaxWidthLimit   = 16
)

var (
	// ErrInvalidWidth is returned when the configured max width is outside
	// MinWidth..MaxWidthLimit.
	ErrInvalidWidth = errors.New("lzwcodec: invalid max code width")

	// ErrClosed is returned when writing to a closed stream.
	ErrClosed = errors.New("lzwcodec: stream closed")
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements framed LZW compression.
type Codec struct {
	maxWidth uint
	stats    stats.Collector
	logger   *zap.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxWidth bounds the code width, and so the dictionary size of each
// session to 1<<width codes.
func WithMaxWidth(width uint) Option {
	return func(c *Codec) {
		c.maxWidth = width
	}
}

// WithStats records session metrics to collector.
func WithStats(collector stats.Collector) Option {
	return func(c *Codec) {
		c.stats = collector
	}
}

// WithLogger sets the logger for session events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// New returns a new LZW codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		maxWidth: DefaultMaxWidth,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layout returns the code layout of streams produced by the codec.
func (c *Codec) Layout() lzw.Layout {
	return lzw.Layout{Symbols: SymbolsCount, MinWidth: MinWidth, MaxWidth: c.maxWidth}
}

func (c *Codec) validate() error {
	if c.maxWidth < MinWidth || c.maxWidth > MaxWidthLimit {
		return fmt.Errorf("%w: %d not in %d..%d", ErrInvalidWidth, c.maxWidth, MinWidth, MaxWidthLimit)
	}
	return nil
}

// Reader wraps r to decompress an LZW stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return newReader(c, r)
}

// Writer wraps w to compress data into an LZW stream. Close must be called
// to terminate the stream; it does not close w.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return newWriter(c, w)
}

// Extension returns "lzw".
func (c *Codec) Extension() string {
	return "lzw"
}

// Name returns "lzw".
func (c *Codec) Name() string {
	return "lzw"
}

// sessionEnded records a finished session on either side of the stream.
func (c *Codec) sessionEnded(side string, marker uint32, codes int64, width uint, entries int) {
	c.stats.IncCounter(stats.MetricSessions, 1)
	c.stats.IncCounter(stats.MetricCodes, codes)
	c.stats.ObserveHistogram(stats.MetricCodeWidth, float64(width))
	c.stats.SetGauge(stats.MetricDictSize, int64(entries))

	c.logger.Debug("lzw session ended",
		zap.String("side", side),
		zap.Bool("stop", marker == StopCode),
		zap.Int64("codes", codes),
		zap.Uint("width", width),
		zap.Int("entries", entries),
	)
}
