package source

import (
	"fmt"
)

// Range is a validated half-open [start, end) range of scalar values in one Buffer.
// The only way to obtain one is Buffer.Range / Buffer.MustRange, so a Range is
// always within bounds of the buffer that produced it.
type Range struct {
	owner *Buffer
	start int // в скалярах включительно
	end   int // в скалярах не включительно
}

// Start returns the inclusive start offset.
func (r Range) Start() int { return r.start }

// End returns the exclusive end offset.
func (r Range) End() int { return r.end }

func (r Range) Empty() bool {
	return r.start == r.end
}

func (r Range) Len() int {
	return r.end - r.start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.start, r.end)
}

// Overlaps reports whether r covers or touches other, assuming r.Start() <= other.Start().
func (r Range) Overlaps(other Range) bool {
	return r.end >= other.start
}

// Cover returns the smallest range containing both r and other.
// Ranges from different buffers are not combined; r is returned unchanged.
func (r Range) Cover(other Range) Range {
	if r.owner != other.owner {
		return r
	}
	if other.start < r.start {
		r.start = other.start
	}
	if other.end > r.end {
		r.end = other.end
	}
	return r
}

// BelongsTo reports whether r was produced by b.
func (r Range) BelongsTo(b *Buffer) bool {
	return r.owner == b
}
