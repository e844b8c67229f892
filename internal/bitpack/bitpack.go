// Package bitpack packs and unpacks values of arbitrary bit width (1 to 32
// bits) into a byte stream.
//
// Values are written most-significant-bit first. A partial trailing byte is
// padded with zero bits in its low-order positions when the Writer is closed,
// so a packed stream is always a whole number of bytes. The padding carries
// no marker: the layer above must know when to stop reading.
package bitpack

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// MaxWidth is the largest value width, in bits, accepted by Write and Read.
const MaxWidth = 32

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("bitpack: writer closed")

// Writer packs variable-width values into an underlying byte sink.
type Writer struct {
	w     io.ByteWriter
	flush func() error // non-nil when Writer owns a bufio.Writer

	acc     uint64 // pending bits, right-aligned
	pending uint   // number of valid bits in acc, always < 8 between calls
	bits    int64
	err     error
	closed  bool
}

// NewWriter returns a Writer emitting bytes to w.
// If w does not implement io.ByteWriter it is wrapped in a bufio.Writer
// which is flushed by Close.
func NewWriter(w io.Writer) *Writer {
	if bw, ok := w.(io.ByteWriter); ok {
		return &Writer{w: bw}
	}
	buf := bufio.NewWriter(w)
	return &Writer{w: buf, flush: buf.Flush}
}

// Write appends the low width bits of value.
// It panics if width is 0 or greater than MaxWidth.
func (w *Writer) Write(value uint32, width uint) error {
	checkWidth(width)
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}

	w.acc = w.acc<<width | uint64(value)&mask(width)
	w.pending += width
	for w.pending >= 8 {
		w.pending -= 8
		if err := w.w.WriteByte(byte(w.acc >> w.pending)); err != nil {
			w.err = fmt.Errorf("bitpack: writing byte: %w", err)
			return w.err
		}
	}
	w.acc &= mask(w.pending)
	w.bits += int64(width)
	return nil
}

// Bits returns the number of value bits written so far, excluding padding.
func (w *Writer) Bits() int64 {
	return w.bits
}

// Pending returns the number of bits waiting for a byte boundary.
func (w *Writer) Pending() uint {
	return w.pending
}

// Close writes any pending bits as a final zero-padded byte.
// It does not close the underlying writer. Calling Close more than once
// is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}

	if w.pending > 0 {
		if err := w.w.WriteByte(byte(w.acc << (8 - w.pending))); err != nil {
			w.err = fmt.Errorf("bitpack: writing final byte: %w", err)
			return w.err
		}
		w.acc, w.pending = 0, 0
	}
	if w.flush != nil {
		if err := w.flush(); err != nil {
			w.err = fmt.Errorf("bitpack: flushing: %w", err)
			return w.err
		}
	}
	return nil
}

// Reader unpacks variable-width values from an underlying byte source.
type Reader struct {
	r io.ByteReader

	acc     uint64
	pending uint
	bits    int64
}

// NewReader returns a Reader consuming bytes from r.
// If r does not implement io.ByteReader it is wrapped in a bufio.Reader,
// which may read ahead of the bits consumed.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(io.ByteReader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next width bits as an unsigned value.
//
// If the source is exhausted before any bit of the value is available, Read
// returns io.EOF. If it is exhausted part way through the value, Read returns
// io.ErrUnexpectedEOF. It panics if width is 0 or greater than MaxWidth.
func (r *Reader) Read(width uint) (uint32, error) {
	checkWidth(width)

	for r.pending < width {
		b, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if r.pending == 0 {
					return 0, io.EOF
				}
				return 0, io.ErrUnexpectedEOF
			}
			return 0, fmt.Errorf("bitpack: reading byte: %w", err)
		}
		r.acc = r.acc<<8 | uint64(b)
		r.pending += 8
	}

	r.pending -= width
	v := uint32(r.acc >> r.pending & mask(width))
	r.acc &= mask(r.pending)
	r.bits += int64(width)
	return v, nil
}

// Bits returns the number of value bits read so far.
func (r *Reader) Bits() int64 {
	return r.bits
}

// Buffered returns the number of bits read from the source but not yet
// returned by Read.
func (r *Reader) Buffered() uint {
	return r.pending
}

func mask(width uint) uint64 {
	return 1<<width - 1
}

func checkWidth(width uint) {
	if width == 0 || width > MaxWidth {
		panic(fmt.Sprintf("bitpack: invalid width %d", width))
	}
}
