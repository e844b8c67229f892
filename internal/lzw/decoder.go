package lzw

import (
	"errors"
	"fmt"
	"io"
)

// State is the position of a Decoder within its session.
type State int

const (
	// StateEmpty means no code of the session has been read.
	StateEmpty State = iota
	// StatePrimed means the first code has been read.
	StatePrimed
	// StateRunning means the dictionary is growing with every code.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePrimed:
		return "primed"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Decoder rebuilds a symbol sequence from LZW codes.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	dict    *Dictionary
	maxCode uint32
	prev    uint32
	state   State
	buf     []uint32
	codes   int64
}

// NewDecoder returns a Decoder for an alphabet of the given size.
func NewDecoder(symbols uint32) *Decoder {
	return &Decoder{dict: NewDictionary(symbols)}
}

// Decode reads codes from src until it returns io.EOF and writes the
// decoded symbols to dst. A code that the encoder cannot have produced
// yields an error wrapping ErrCorrupt; the session is then unusable until
// Reset.
func (d *Decoder) Decode(src CodeSource, dst SymbolSink) error {
	if d.state == StateEmpty {
		d.maxCode = src.MaxCode()
		if d.maxCode <= d.dict.SymbolsCount() {
			return fmt.Errorf("%w: max code %d, %d symbols", ErrCodeSpace, d.maxCode, d.dict.SymbolsCount())
		}
	}

	for {
		// The encoder assigned next before emitting the code read below,
		// so the source must widen at this point too.
		if d.state != StateEmpty && d.dict.Next() < d.maxCode {
			src.NewCode(d.dict.Next())
		}

		code, err := src.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("lzw: reading code: %w", err)
		}

		if err := d.step(code, dst); err != nil {
			return err
		}
	}
}

// step decodes one code.
func (d *Decoder) step(code uint32, dst SymbolSink) error {
	if d.state == StateEmpty {
		if code >= d.dict.SymbolsCount() {
			return fmt.Errorf("%w: first code %d is not a literal", ErrCorrupt, code)
		}
		d.buf = append(d.buf[:0], code)
		if err := d.emit(dst); err != nil {
			return err
		}
		d.prev = code
		d.state = StatePrimed
		d.codes++
		return nil
	}

	next := d.dict.Next()
	var first uint32
	switch {
	case code < next:
		d.buf = d.dict.Decompose(code, d.buf)
		first = d.buf[0]
	case code == next && next < d.maxCode:
		// The encoder emitted the entry it had just learned: previous
		// sequence followed by its own first symbol.
		first = d.dict.FirstSymbol(d.prev)
		d.buf = append(d.dict.Decompose(d.prev, d.buf), first)
	default:
		return fmt.Errorf("%w: code %d, next code %d", ErrCorrupt, code, next)
	}

	if err := d.emit(dst); err != nil {
		return err
	}
	if next < d.maxCode {
		d.dict.Add(d.prev, first)
	}
	d.prev = code
	d.state = StateRunning
	d.codes++
	return nil
}

func (d *Decoder) emit(dst SymbolSink) error {
	for _, s := range d.buf {
		if err := dst.Write(s); err != nil {
			return fmt.Errorf("lzw: writing symbol: %w", err)
		}
	}
	return nil
}

// State returns the session state.
func (d *Decoder) State() State {
	return d.state
}

// Codes returns the number of codes decoded in the current session.
func (d *Decoder) Codes() int64 {
	return d.codes
}

// Dictionary returns the decoder's dictionary.
func (d *Decoder) Dictionary() *Dictionary {
	return d.dict
}

// Reset starts a new session with an empty dictionary.
func (d *Decoder) Reset() {
	d.dict.Reset()
	d.state = StateEmpty
	d.codes = 0
}
