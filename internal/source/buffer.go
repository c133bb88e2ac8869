package source

import (
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// NewBuffer builds a Buffer and its prefix-width table in one pass.
func NewBuffer(text string) *Buffer {
	offsets := make([]int, 0, len(text)+1)
	lineIdx := make([]int, 0, 8)
	for i := 0; i < len(text); {
		if text[i] == '\n' {
			lineIdx = append(lineIdx, len(offsets))
		}
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	offsets = append(offsets, len(text))
	return &Buffer{text: text, offsets: offsets, lineIdx: lineIdx}
}

// Text returns the underlying UTF-8 string.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the length in scalar values.
func (b *Buffer) Len() int {
	return len(b.offsets) - 1
}

// Range constructs a validated character range.
func (b *Buffer) Range(start, end int) (Range, error) {
	if start < 0 || end < start || end > b.Len() {
		return Range{}, fmt.Errorf("%w: [%d,%d) in buffer of length %d", ErrInvalidRange, start, end, b.Len())
	}
	return Range{owner: b, start: start, end: end}, nil
}

// MustRange is Range for callers that have already established the bounds.
// It panics on violation: an out-of-bounds range here is a programming error.
func (b *Buffer) MustRange(start, end int) Range {
	r, err := b.Range(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// All returns the range covering the whole buffer.
func (b *Buffer) All() Range {
	return Range{owner: b, start: 0, end: b.Len()}
}

// Translate maps a character range to storage (byte) coordinates in O(1).
func (b *Buffer) Translate(r Range) ByteSpan {
	b.checkOwner(r)
	return ByteSpan{Start: b.offsets[r.start], End: b.offsets[r.end]}
}

// translateScan is the reference O(n) form of Translate: every scalar wider than
// one byte shifts all indices at or after it by (width-1).
func (b *Buffer) translateScan(r Range) ByteSpan {
	b.checkOwner(r)
	var (
		extra     int
		startByte = -1
		idx       int
	)
	for i := 0; ; idx++ {
		if idx == r.start {
			startByte = idx + extra
		}
		if idx == r.end {
			return ByteSpan{Start: startByte, End: idx + extra}
		}
		_, size := utf8.DecodeRuneInString(b.text[i:])
		extra += size - 1
		i += size
	}
}

// CharOffset maps a byte offset back to a scalar index.
// ok is false when byteOff is outside the text or splits a multi-byte sequence.
func (b *Buffer) CharOffset(byteOff int) (int, bool) {
	idx := sort.SearchInts(b.offsets, byteOff)
	if idx >= len(b.offsets) || b.offsets[idx] != byteOff {
		return 0, false
	}
	return idx, true
}

// Slice returns the substring addressed by r.
func (b *Buffer) Slice(r Range) string {
	sp := b.Translate(r)
	return b.text[sp.Start:sp.End]
}

// ScalarFromUTF16 converts a UTF-16 code-unit offset into a scalar index.
// ok is false when unit lands inside a surrogate pair or past the end.
func (b *Buffer) ScalarFromUTF16(unit int) (int, bool) {
	if unit < 0 {
		return 0, false
	}
	units := 0
	for idx := 0; idx < b.Len(); idx++ {
		if units == unit {
			return idx, true
		}
		if units > unit {
			return 0, false
		}
		r, _ := utf8.DecodeRuneInString(b.text[b.offsets[idx]:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	if units == unit {
		return b.Len(), true
	}
	return 0, false
}

// LineCol resolves a scalar offset into a 1-based line/column pair.
func (b *Buffer) LineCol(off int) LineCol {
	return toLineCol(b.lineIdx, off)
}

func (b *Buffer) checkOwner(r Range) {
	if r.owner != b {
		panic(fmt.Errorf("%w: range %s belongs to another buffer", ErrInvalidRange, r))
	}
}
