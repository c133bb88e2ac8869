package source

import "errors"

// ErrInvalidRange is returned when a character range violates 0 ≤ start ≤ end ≤ len.
var ErrInvalidRange = errors.New("invalid character range")

type (
	// InputFlags encodes how raw input was normalised before it became a Buffer.
	InputFlags uint8 // метаданные входа
)

const (
	// InputVirtual marks text that did not come from a file (args, stdin, tests).
	InputVirtual InputFlags = 1 << iota
	InputHadBOM
	InputNormalizedCRLF
)

// Buffer is an immutable text in Unicode scalar-value coordinates.
//
// offsets[i] is the byte offset of scalar i; offsets[Len()] == len(text).
// Invalid UTF-8 bytes are counted as one scalar each.
type Buffer struct {
	text    string
	offsets []int
	lineIdx []int // scalar index of every '\n'
}

// ByteSpan is a half-open [Start, End) range in UTF-8 storage coordinates.
type ByteSpan struct {
	Start int
	End   int
}

// LineCol represents a human-readable position in a Buffer.
type LineCol struct {
	Line int // 1-based
	Col  int // 1-based, in scalar values
}
