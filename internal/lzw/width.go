package lzw

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/discochess/lzwpack/internal/bitpack"
)

// MaxCodeWidth is the largest code width a Layout may request.
const MaxCodeWidth = 24

// ErrCodeRange is returned when a code does not fit the current width.
var ErrCodeRange = errors.New("lzw: code exceeds current width")

// Layout describes how codes are sized on the wire.
type Layout struct {
	// Symbols is the alphabet size.
	Symbols uint32
	// MinWidth is the floor of the code width.
	MinWidth uint
	// MaxWidth bounds the code space to 1<<MaxWidth codes.
	MaxWidth uint
}

// InitialWidth returns the width of the first code of a session: wide
// enough for every literal, and at least MinWidth.
func (l Layout) InitialWidth() uint {
	var w uint
	if l.Symbols > 1 {
		w = uint(bits.Len32(l.Symbols - 1))
	}
	if w < l.MinWidth {
		w = l.MinWidth
	}
	if w == 0 {
		w = 1
	}
	return w
}

// MaxCode returns the size of the code space.
func (l Layout) MaxCode() uint32 {
	return 1 << l.MaxWidth
}

// Validate checks that the layout can carry at least one learned code.
func (l Layout) Validate() error {
	if l.Symbols == 0 {
		return errors.New("lzw: empty alphabet")
	}
	if l.MaxWidth > MaxCodeWidth {
		return fmt.Errorf("lzw: max width %d exceeds %d", l.MaxWidth, MaxCodeWidth)
	}
	if l.InitialWidth() > l.MaxWidth || l.MaxCode() <= l.Symbols {
		return fmt.Errorf("%w: max width %d, %d symbols", ErrCodeSpace, l.MaxWidth, l.Symbols)
	}
	return nil
}

// WidthFunc observes each code moved through a CodeWriter or CodeReader
// together with the width it occupied.
type WidthFunc func(code uint32, width uint)

// widthTracker holds the session width shared by CodeWriter and CodeReader.
type widthTracker struct {
	layout  Layout
	width   uint
	observe WidthFunc
}

func (t *widthTracker) MaxCode() uint32 {
	return t.layout.MaxCode()
}

// Reset restores the initial width.
func (t *widthTracker) Reset() {
	t.width = t.layout.InitialWidth()
}

// NewCode widens codes by one bit exactly when code no longer fits.
func (t *widthTracker) NewCode(code uint32) {
	if t.width < t.layout.MaxWidth && code == 1<<t.width {
		t.width++
	}
}

// Width returns the current code width.
func (t *widthTracker) Width() uint {
	return t.width
}

// Observe registers fn to be called for every code.
func (t *widthTracker) Observe(fn WidthFunc) {
	t.observe = fn
}

// CodeWriter is a CodeSink writing variable-width codes to a bit stream.
type CodeWriter struct {
	widthTracker
	w *bitpack.Writer
}

// Compile-time check that CodeWriter implements CodeSink.
var _ CodeSink = (*CodeWriter)(nil)

// NewCodeWriter returns a CodeWriter for the given layout.
func NewCodeWriter(w *bitpack.Writer, layout Layout) (*CodeWriter, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	cw := &CodeWriter{widthTracker: widthTracker{layout: layout}, w: w}
	cw.Reset()
	return cw, nil
}

// Write emits code at the current width.
func (cw *CodeWriter) Write(code uint32) error {
	if uint64(code) >= 1<<cw.width {
		return fmt.Errorf("%w: code %d, width %d", ErrCodeRange, code, cw.width)
	}
	if cw.observe != nil {
		cw.observe(code, cw.width)
	}
	return cw.w.Write(code, cw.width)
}

// CodeReader is a CodeSource reading variable-width codes from a bit stream.
type CodeReader struct {
	widthTracker
	r *bitpack.Reader
}

// Compile-time check that CodeReader implements CodeSource.
var _ CodeSource = (*CodeReader)(nil)

// NewCodeReader returns a CodeReader for the given layout.
func NewCodeReader(r *bitpack.Reader, layout Layout) (*CodeReader, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	cr := &CodeReader{widthTracker: widthTracker{layout: layout}, r: r}
	cr.Reset()
	return cr, nil
}

// Read returns the next code at the current width. It returns io.EOF when
// the stream ends on a code boundary and io.ErrUnexpectedEOF when it ends
// inside a code.
func (cr *CodeReader) Read() (uint32, error) {
	code, err := cr.r.Read(cr.width)
	if err != nil {
		return 0, err
	}
	if cr.observe != nil {
		cr.observe(code, cr.width)
	}
	return code, nil
}
