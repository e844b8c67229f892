// Package lzw implements an adaptive Lempel-Ziv-Welch codec over an
// arbitrary symbol alphabet.
//
// The Encoder and Decoder each build a private dictionary of observed symbol
// sequences. Both dictionaries grow in the same order, driven only by the
// code sequence, so no dictionary is ever transmitted. The codec is agnostic
// of transport: it reads and writes through the small collaborator
// interfaces below. CodeWriter and CodeReader adapt them to a variable-width
// bit stream.
//
// A session is one dictionary lifetime. It ends when the input is exhausted
// or when the code space is full, at which point the caller resets both
// sides. Any in-band marker telling the decoder where a session ends is a
// caller convention and is not interpreted here.
package lzw

import "errors"

var (
	// ErrCorrupt indicates a code that cannot have been produced by an
	// Encoder in the decoder's current state.
	ErrCorrupt = errors.New("lzw: corrupt code stream")

	// ErrSymbolRange indicates a source symbol outside the declared alphabet.
	ErrSymbolRange = errors.New("lzw: symbol out of range")

	// ErrCodeSpace indicates a code space too small for the alphabet.
	ErrCodeSpace = errors.New("lzw: code space smaller than alphabet")

	// ErrSessionClosed is returned when encoding continues after a session
	// was flushed or filled without an intervening Reset.
	ErrSessionClosed = errors.New("lzw: session closed; reset required")
)

// SymbolSource supplies the symbols to encode.
type SymbolSource interface {
	// EndOfData reports whether the source is exhausted.
	EndOfData() bool
	// SymbolsCount returns the alphabet size; symbols are 0..SymbolsCount-1.
	SymbolsCount() uint32
	// Next returns the next symbol and advances.
	Next() (uint32, error)
}

// CodeSink receives the codes produced by an Encoder.
type CodeSink interface {
	// MaxCode returns the size of the code space. Codes are < MaxCode.
	MaxCode() uint32
	// Reset restores the sink's session state, typically its code width.
	Reset()
	// NewCode announces that code was just assigned in the dictionary.
	NewCode(code uint32)
	// Write emits one code.
	Write(code uint32) error
}

// CodeSource supplies the codes consumed by a Decoder.
type CodeSource interface {
	MaxCode() uint32
	Reset()
	NewCode(code uint32)
	// Read returns the next code. It returns io.EOF when the session's code
	// stream has ended.
	Read() (uint32, error)
}

// SymbolSink receives decoded symbols.
type SymbolSink interface {
	Write(symbol uint32) error
}
