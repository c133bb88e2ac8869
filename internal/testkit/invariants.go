// Package testkit holds invariant checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"voltaire/internal/diag"
	"voltaire/internal/source"
)

// CheckResolved runs the invariants every resolved annotation list must hold:
// 1) every range belongs to buf and lies within [0, buf.Len()]
// 2) every annotation carries at least one suggestion
// 3) annotations are ascending and separated by at least one scalar
func CheckResolved(buf *source.Buffer, annotations []diag.Annotation) error {
	if buf == nil {
		return fmt.Errorf("nil buffer")
	}
	for i, a := range annotations {
		if err := checkAnnotation(buf, a); err != nil {
			return fmt.Errorf("annotation %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := annotations[i-1]
		if prev.End() >= a.Start() {
			return fmt.Errorf("annotations %d and %d touch or overlap: %s %s", i-1, i, prev.Range, a.Range)
		}
	}
	return nil
}

// CheckNormalized is the weaker form for normalizer output: ranges and
// suggestions are checked, order and overlap are not.
func CheckNormalized(buf *source.Buffer, annotations []diag.Annotation, maxSuggestions int) error {
	if buf == nil {
		return fmt.Errorf("nil buffer")
	}
	for i, a := range annotations {
		if err := checkAnnotation(buf, a); err != nil {
			return fmt.Errorf("annotation %d: %w", i, err)
		}
		if maxSuggestions > 0 && len(a.Suggestions) > maxSuggestions {
			return fmt.Errorf("annotation %d: %d suggestions, cap is %d", i, len(a.Suggestions), maxSuggestions)
		}
	}
	return nil
}

func checkAnnotation(buf *source.Buffer, a diag.Annotation) error {
	if !a.Range.BelongsTo(buf) {
		return fmt.Errorf("range %s does not belong to the buffer", a.Range)
	}
	if a.Start() < 0 || a.End() < a.Start() || a.End() > buf.Len() {
		return fmt.Errorf("range %s is outside [0, %d]", a.Range, buf.Len())
	}
	if len(a.Suggestions) == 0 {
		return fmt.Errorf("range %s has no suggestions", a.Range)
	}
	// смещения в байтах тоже должны помещаться в текст
	sp := buf.Translate(a.Range)
	textLen, err := safecast.Conv[uint32](len(buf.Text()))
	if err != nil {
		return fmt.Errorf("text length overflow: %w", err)
	}
	end, err := safecast.Conv[uint32](sp.End)
	if err != nil {
		return fmt.Errorf("byte end overflow: %w", err)
	}
	if end > textLen || sp.Start > sp.End {
		return fmt.Errorf("byte span [%d, %d) is outside the text (%d bytes)", sp.Start, sp.End, textLen)
	}
	return nil
}
