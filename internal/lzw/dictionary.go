package lzw

import "fmt"

// entry describes the sequence of a learned code: the sequence of prefix
// followed by suffix. first and length cache properties of the full
// expansion.
type entry struct {
	prefix uint32
	suffix uint32
	first  uint32
	length uint32
}

// Dictionary is the append-only code table shared in shape by the Encoder
// and Decoder. Codes below the alphabet size are implicit literals; learned
// codes start at the alphabet size and are stored in assignment order.
type Dictionary struct {
	symbols uint32
	entries []entry
}

// NewDictionary returns an empty dictionary over an alphabet of the given
// size.
func NewDictionary(symbols uint32) *Dictionary {
	return &Dictionary{symbols: symbols}
}

// SymbolsCount returns the alphabet size.
func (d *Dictionary) SymbolsCount() uint32 {
	return d.symbols
}

// Next returns the code the next Add will assign.
func (d *Dictionary) Next() uint32 {
	return d.symbols + uint32(len(d.entries))
}

// Len returns the number of learned entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Contains reports whether code is a literal or an assigned entry.
func (d *Dictionary) Contains(code uint32) bool {
	return code < d.Next()
}

// Add appends the entry (prefix, suffix) and returns its code.
// prefix must already be defined and suffix must be a symbol.
func (d *Dictionary) Add(prefix, suffix uint32) uint32 {
	if !d.Contains(prefix) || suffix >= d.symbols {
		panic(fmt.Sprintf("lzw: invalid entry (%d, %d) at code %d", prefix, suffix, d.Next()))
	}
	code := d.Next()
	d.entries = append(d.entries, entry{
		prefix: prefix,
		suffix: suffix,
		first:  d.FirstSymbol(prefix),
		length: d.Length(prefix) + 1,
	})
	return code
}

// Entry returns the prefix and suffix of a learned code.
// ok is false for literals and unassigned codes.
func (d *Dictionary) Entry(code uint32) (prefix, suffix uint32, ok bool) {
	if code < d.symbols || !d.Contains(code) {
		return 0, 0, false
	}
	e := d.entries[code-d.symbols]
	return e.prefix, e.suffix, true
}

// FirstSymbol returns the first symbol of the expansion of code.
// code must be defined.
func (d *Dictionary) FirstSymbol(code uint32) uint32 {
	if code < d.symbols {
		return code
	}
	return d.entries[code-d.symbols].first
}

// Length returns the number of symbols in the expansion of code.
// code must be defined.
func (d *Dictionary) Length(code uint32) uint32 {
	if code < d.symbols {
		return 1
	}
	return d.entries[code-d.symbols].length
}

// Decompose writes the expansion of code into buf, reusing its storage,
// and returns the resulting slice. code must be defined.
func (d *Dictionary) Decompose(code uint32, buf []uint32) []uint32 {
	n := int(d.Length(code))
	if cap(buf) < n {
		buf = make([]uint32, n, 2*n)
	}
	buf = buf[:n]

	// The chain is walked from the last symbol back to the literal root.
	for i := n - 1; i > 0; i-- {
		e := d.entries[code-d.symbols]
		buf[i] = e.suffix
		code = e.prefix
	}
	buf[0] = code
	return buf
}

// Reset discards all learned entries.
func (d *Dictionary) Reset() {
	d.entries = d.entries[:0]
}
