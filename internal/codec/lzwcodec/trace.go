package lzwcodec

import (
	"fmt"
	"io"
)

// Kind classifies a code read from a stream.
type Kind int

const (
	KindLiteral Kind = iota
	KindLearned
	KindReset
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindLearned:
		return "learned"
	case KindReset:
		return "reset"
	case KindStop:
		return "stop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func kindOf(code uint32) Kind {
	switch {
	case code == ResetCode:
		return KindReset
	case code == StopCode:
		return KindStop
	case code < ResetCode:
		return KindLiteral
	default:
		return KindLearned
	}
}

// Event describes one code of a stream.
type Event struct {
	Session int
	Index   int64
	Code    uint32
	Width   uint
	Kind    Kind
}

// Summary totals a traced stream.
type Summary struct {
	Sessions int
	Codes    int64
	Bits     int64
	Bytes    int64
}

// Ratio returns the compressed size as a fraction of the decoded size.
func (s Summary) Ratio() float64 {
	if s.Bytes == 0 {
		return 0
	}
	return float64((s.Bits+7)/8) / float64(s.Bytes)
}

// Trace decodes the stream from r, calling fn, if not nil, with every code
// in stream order.
func (c *Codec) Trace(r io.Reader, fn func(Event)) (Summary, error) {
	if err := c.validate(); err != nil {
		return Summary{}, err
	}
	rd, err := newReader(c, r)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	rd.src.Observe(func(code uint32, width uint) {
		ev := Event{
			Session: sum.Sessions,
			Index:   sum.Codes,
			Code:    code,
			Width:   width,
			Kind:    kindOf(code),
		}
		sum.Codes++
		if ev.Kind == KindReset || ev.Kind == KindStop {
			sum.Sessions++
		}
		if fn != nil {
			fn(ev)
		}
	})

	n, err := io.Copy(io.Discard, rd)
	sum.Bytes = n
	sum.Bits = rd.bits.Bits()
	return sum, err
}
