package source

import (
	"testing"
)

func TestRange_Accessors(t *testing.T) {
	b := NewBuffer("The cat runs fast")
	tests := []struct {
		name      string
		start     int
		end       int
		wantLen   int
		wantEmpty bool
		wantStr   string
	}{
		{name: "word", start: 4, end: 7, wantLen: 3, wantStr: "[4,7)"},
		{name: "empty", start: 8, end: 8, wantEmpty: true, wantStr: "[8,8)"},
		{name: "whole", start: 0, end: 17, wantLen: 17, wantStr: "[0,17)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := b.MustRange(tt.start, tt.end)
			if r.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", r.Len(), tt.wantLen)
			}
			if r.Empty() != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", r.Empty(), tt.wantEmpty)
			}
			if r.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", r.String(), tt.wantStr)
			}
			if !r.BelongsTo(b) {
				t.Error("range should belong to its buffer")
			}
		})
	}
}

func TestRange_Cover(t *testing.T) {
	b := NewBuffer("0123456789")
	tests := []struct {
		name     string
		a, b     [2]int
		expected [2]int
	}{
		{name: "nested", a: [2]int{0, 5}, b: [2]int{2, 4}, expected: [2]int{0, 5}},
		{name: "overlapping right", a: [2]int{0, 5}, b: [2]int{3, 8}, expected: [2]int{0, 8}},
		{name: "touching", a: [2]int{0, 3}, b: [2]int{3, 6}, expected: [2]int{0, 6}},
		{name: "other first", a: [2]int{4, 6}, b: [2]int{1, 5}, expected: [2]int{1, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.MustRange(tt.a[0], tt.a[1]).Cover(b.MustRange(tt.b[0], tt.b[1]))
			if got.Start() != tt.expected[0] || got.End() != tt.expected[1] {
				t.Errorf("Cover() = %s, want [%d,%d)", got, tt.expected[0], tt.expected[1])
			}
		})
	}
}

func TestRange_CoverForeignBuffer(t *testing.T) {
	a := NewBuffer("abcdef")
	other := NewBuffer("abcdef")
	r := a.MustRange(0, 2)
	if got := r.Cover(other.MustRange(1, 5)); got != r {
		t.Errorf("Cover across buffers = %s, want unchanged %s", got, r)
	}
}

func TestRange_Overlaps(t *testing.T) {
	b := NewBuffer("0123456789")
	tests := []struct {
		name string
		pred [2]int
		cur  [2]int
		want bool
	}{
		{name: "disjoint", pred: [2]int{0, 2}, cur: [2]int{3, 4}, want: false},
		{name: "touching", pred: [2]int{0, 3}, cur: [2]int{3, 4}, want: true},
		{name: "nested", pred: [2]int{0, 5}, cur: [2]int{2, 3}, want: true},
		{name: "zero length inside", pred: [2]int{2, 2}, cur: [2]int{2, 4}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := b.MustRange(tt.pred[0], tt.pred[1])
			c := b.MustRange(tt.cur[0], tt.cur[1])
			if got := p.Overlaps(c); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", p, c, got, tt.want)
			}
		})
	}
}
