package lzw

import "fmt"

// Encoder turns a symbol sequence into LZW codes.
// An Encoder is not safe for concurrent use.
type Encoder struct {
	dict  *Dictionary
	index map[uint64]uint32

	maxCode uint32
	prefix  uint32
	primed  bool // prefix holds a pending code
	full    bool
	closed  bool
	codes   int64
}

// NewEncoder returns an Encoder. Its dictionary is sized from the first
// source it reads.
func NewEncoder() *Encoder {
	return &Encoder{index: make(map[uint64]uint32)}
}

// Encode drains src into dst and emits the final pending code.
// It returns early, with Full reporting true, when the code space of dst is
// exhausted; the caller then ends the session, calls Reset on the Encoder
// and on dst, and calls Encode again to continue with the same source.
func (e *Encoder) Encode(src SymbolSource, dst CodeSink) error {
	if err := e.Feed(src, dst); err != nil {
		return err
	}
	return e.Flush(dst)
}

// Feed consumes src until it reports EndOfData or the code space of dst is
// full, without emitting the code of the sequence still being matched.
// It may be called repeatedly with successive sources of the same session.
func (e *Encoder) Feed(src SymbolSource, dst CodeSink) error {
	if e.closed || e.full {
		return ErrSessionClosed
	}
	if err := e.begin(src, dst); err != nil {
		return err
	}

	if !e.primed {
		if src.EndOfData() {
			return nil
		}
		s, err := e.read(src)
		if err != nil {
			return err
		}
		e.prefix = s
		e.primed = true
	}

	for !src.EndOfData() {
		s, err := e.read(src)
		if err != nil {
			return err
		}

		key := pairKey(e.prefix, s)
		if code, ok := e.index[key]; ok {
			e.prefix = code
			continue
		}

		if err := e.emit(dst, e.prefix); err != nil {
			return err
		}
		code := e.dict.Add(e.prefix, s)
		e.index[key] = code
		dst.NewCode(code)
		e.prefix = s

		if e.dict.Next() >= e.maxCode {
			e.full = true
			return nil
		}
	}
	return nil
}

// Flush emits the code of the sequence still being matched, if any, and
// closes the session. Further input requires Reset.
func (e *Encoder) Flush(dst CodeSink) error {
	e.closed = true
	if !e.primed {
		return nil
	}
	e.primed = false
	return e.emit(dst, e.prefix)
}

// Full reports whether the session stopped because the code space is
// exhausted.
func (e *Encoder) Full() bool {
	return e.full
}

// Codes returns the number of codes emitted in the current session.
func (e *Encoder) Codes() int64 {
	return e.codes
}

// Dictionary returns the encoder's dictionary. It is nil until the first
// source has been read.
func (e *Encoder) Dictionary() *Dictionary {
	return e.dict
}

// Reset starts a new session with an empty dictionary.
// Any pending code not yet flushed is discarded.
func (e *Encoder) Reset() {
	if e.dict != nil {
		e.dict.Reset()
	}
	clear(e.index)
	e.primed = false
	e.full = false
	e.closed = false
	e.codes = 0
}

// begin sizes the dictionary for src and captures the code space of dst at
// the start of a session.
func (e *Encoder) begin(src SymbolSource, dst CodeSink) error {
	symbols := src.SymbolsCount()
	switch {
	case e.dict == nil:
		e.dict = NewDictionary(symbols)
	case e.dict.SymbolsCount() != symbols:
		if e.primed || e.dict.Len() > 0 {
			return fmt.Errorf("lzw: alphabet changed from %d to %d mid-session",
				e.dict.SymbolsCount(), symbols)
		}
		e.dict = NewDictionary(symbols)
	}

	if e.primed || e.dict.Len() > 0 {
		return nil
	}
	e.maxCode = dst.MaxCode()
	if e.maxCode <= symbols {
		return fmt.Errorf("%w: max code %d, %d symbols", ErrCodeSpace, e.maxCode, symbols)
	}
	return nil
}

func (e *Encoder) read(src SymbolSource) (uint32, error) {
	s, err := src.Next()
	if err != nil {
		return 0, fmt.Errorf("lzw: reading symbol: %w", err)
	}
	if s >= e.dict.SymbolsCount() {
		return 0, fmt.Errorf("%w: %d >= %d", ErrSymbolRange, s, e.dict.SymbolsCount())
	}
	return s, nil
}

func (e *Encoder) emit(dst CodeSink, code uint32) error {
	if err := dst.Write(code); err != nil {
		return fmt.Errorf("lzw: writing code %d: %w", code, err)
	}
	e.codes++
	return nil
}

func pairKey(prefix, suffix uint32) uint64 {
	return uint64(prefix)<<32 | uint64(suffix)
}
