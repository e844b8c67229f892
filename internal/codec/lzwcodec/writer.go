package lzwcodec

import (
	"fmt"
	"io"

	"github.com/discochess/lzwpack/internal/bitpack"
	"github.com/discochess/lzwpack/internal/lzw"
)

// byteSource presents one Write buffer as an lzw.SymbolSource.
type byteSource struct {
	buf []byte
	pos int
}

func (s *byteSource) EndOfData() bool      { return s.pos >= len(s.buf) }
func (s *byteSource) SymbolsCount() uint32 { return SymbolsCount }

func (s *byteSource) Next() (uint32, error) {
	b := s.buf[s.pos]
	s.pos++
	return uint32(b), nil
}

// writer compresses bytes into a framed LZW stream.
type writer struct {
	c     *Codec
	bits  *bitpack.Writer
	codes *lzw.CodeWriter
	enc   *lzw.Encoder
	src   byteSource

	err    error
	closed bool
}

func newWriter(c *Codec, w io.Writer) (*writer, error) {
	bits := bitpack.NewWriter(w)
	codes, err := lzw.NewCodeWriter(bits, c.Layout())
	if err != nil {
		return nil, err
	}
	return &writer{
		c:     c,
		bits:  bits,
		codes: codes,
		enc:   lzw.NewEncoder(),
	}, nil
}

// Write encodes p. Sessions that fill the dictionary are ended with
// ResetCode as they occur.
func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}

	w.src = byteSource{buf: p}
	for {
		if err := w.enc.Feed(&w.src, w.codes); err != nil {
			w.err = err
			return w.src.pos, err
		}
		if !w.enc.Full() {
			return len(p), nil
		}
		if err := w.endSession(ResetCode); err != nil {
			w.err = err
			return w.src.pos, err
		}
	}
}

// Close ends the last session with StopCode and pads the final byte.
// It does not close the underlying writer.
func (w *writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}

	if err := w.endSession(StopCode); err != nil {
		w.err = err
		return err
	}
	if err := w.bits.Close(); err != nil {
		w.err = fmt.Errorf("lzwcodec: flushing stream: %w", err)
		return w.err
	}
	return nil
}

// endSession flushes the pending code and writes marker.
func (w *writer) endSession(marker uint32) error {
	if err := w.enc.Flush(w.codes); err != nil {
		return err
	}

	codes := w.enc.Codes()
	var entries int
	if codes > 0 {
		dict := w.enc.Dictionary()
		entries = dict.Len()
		// The decoder announces its next code before every read after the
		// first, the marker included.
		if next := dict.Next(); next < w.codes.MaxCode() {
			w.codes.NewCode(next)
		}
	}

	width := w.codes.Width()
	if err := w.codes.Write(marker); err != nil {
		return fmt.Errorf("lzwcodec: writing marker %d: %w", marker, err)
	}
	w.c.sessionEnded("writer", marker, codes, width, entries)

	w.enc.Reset()
	w.codes.Reset()
	return nil
}
