package lzwcodec

import (
	"errors"
	"fmt"
	"io"

	"github.com/discochess/lzwpack/internal/bitpack"
	"github.com/discochess/lzwpack/internal/lzw"
)

// fillSize bounds how many decoded bytes are buffered before the decoder
// pauses mid-session.
const fillSize = 32 << 10

// sessionSource ends the decoder's code stream at a session marker, or when
// the reader's buffer is full.
type sessionSource struct {
	*lzw.CodeReader
	r      *reader
	marker uint32
}

func (s *sessionSource) Read() (uint32, error) {
	if len(s.r.out) >= fillSize {
		return 0, io.EOF
	}
	code, err := s.CodeReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: stream ended without stop code", io.ErrUnexpectedEOF)
		}
		return 0, err
	}
	if code == ResetCode || code == StopCode {
		s.marker = code
		return 0, io.EOF
	}
	return code, nil
}

// reader decompresses a framed LZW stream.
type reader struct {
	c    *Codec
	bits *bitpack.Reader
	src  sessionSource
	dec  *lzw.Decoder

	out []byte
	off int

	done   bool
	closed bool
	err    error
}

func newReader(c *Codec, r io.Reader) (*reader, error) {
	bits := bitpack.NewReader(r)
	codes, err := lzw.NewCodeReader(bits, c.Layout())
	if err != nil {
		return nil, err
	}
	rd := &reader{
		c:    c,
		bits: bits,
		dec:  lzw.NewDecoder(SymbolsCount),
		out:  make([]byte, 0, fillSize),
	}
	rd.src = sessionSource{CodeReader: codes, r: rd}
	return rd, nil
}

// Read implements io.Reader.
func (r *reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	for r.off >= len(r.out) {
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			return 0, io.EOF
		}
		r.fill()
	}
	n := copy(p, r.out[r.off:])
	r.off += n
	return n, nil
}

// fill decodes until the buffer is full or the session ends.
func (r *reader) fill() {
	r.out = r.out[:0]
	r.off = 0
	r.src.marker = 0

	if err := r.dec.Decode(&r.src, r); err != nil {
		r.err = err
		return
	}

	switch r.src.marker {
	case ResetCode, StopCode:
		r.c.sessionEnded("reader", r.src.marker, r.dec.Codes(), r.src.Width(), r.dec.Dictionary().Len())
		if r.src.marker == StopCode {
			r.done = true
			return
		}
		r.dec.Reset()
		r.src.Reset()
	}
}

// Write implements lzw.SymbolSink for the decoder.
func (r *reader) Write(symbol uint32) error {
	if symbol > 0xff {
		return fmt.Errorf("%w: marker %d inside a sequence", lzw.ErrCorrupt, symbol)
	}
	r.out = append(r.out, byte(symbol))
	return nil
}

// Close releases the decoder. It does not close the underlying reader.
func (r *reader) Close() error {
	r.closed = true
	r.out = nil
	return nil
}
