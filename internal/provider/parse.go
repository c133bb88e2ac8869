package provider

import (
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"
	"github.com/tidwall/gjson"

	"voltaire/internal/diag"
	"voltaire/internal/source"
)

// OffsetUnits says how the provider counts offsets and lengths.
type OffsetUnits uint8

const (
	// UnitsScalar counts Unicode scalar values.
	UnitsScalar OffsetUnits = iota
	// UnitsUTF16 counts UTF-16 code units, as Java-based servers do.
	UnitsUTF16
)

func (u OffsetUnits) String() string {
	switch u {
	case UnitsScalar:
		return "scalar"
	case UnitsUTF16:
		return "utf16"
	default:
		return "unknown"
	}
}

// ParseUnits converts a config value to OffsetUnits.
func ParseUnits(s string) (OffsetUnits, error) {
	switch strings.ToLower(s) {
	case "", "scalar":
		return UnitsScalar, nil
	case "utf16", "utf-16":
		return UnitsUTF16, nil
	default:
		return UnitsScalar, fmt.Errorf("invalid offset units: %q (expected: scalar|utf16)", s)
	}
}

// ParseMatches extracts one RawIssue per entry of the response's matches array.
// Individual entries are not validated here: missing or mistyped fields are
// left nil for the normalizer to drop. Offsets in UTF-16 units are converted to
// scalar values against buf.
func ParseMatches(body []byte, buf *source.Buffer, units OffsetUnits) ([]diag.RawIssue, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	matches := gjson.GetBytes(body, "matches")
	if !matches.IsArray() {
		return nil, fmt.Errorf("%w: no matches array", ErrMalformedResponse)
	}

	arr := matches.Array()
	out := make([]diag.RawIssue, 0, len(arr))
	for _, m := range arr {
		out = append(out, parseMatch(m, buf, units))
	}
	return out, nil
}

// DetectedLanguage returns the language code the provider detected, if any.
func DetectedLanguage(body []byte) string {
	return gjson.GetBytes(body, "language.detectedLanguage.code").String()
}

func parseMatch(m gjson.Result, buf *source.Buffer, units OffsetUnits) diag.RawIssue {
	raw := diag.RawIssue{
		RuleID:    m.Get("rule.id").String(),
		IssueType: m.Get("rule.issueType").String(),
		Category:  m.Get("rule.category.id").String(),
	}
	if msg := m.Get("message"); msg.Type == gjson.String {
		s := msg.String()
		raw.Message = &s
	}

	off, okOff := intField(m.Get("offset"))
	length, okLen := intField(m.Get("length"))
	if okOff && okLen && units == UnitsUTF16 {
		off, length, okOff = fromUTF16(buf, off, length)
		okLen = okOff
	}
	if okOff {
		raw.Offset = &off
	}
	if okLen {
		raw.Length = &length
	}

	m.Get("replacements").ForEach(func(_, v gjson.Result) bool {
		if val := v.Get("value"); val.Type == gjson.String {
			raw.Candidates = append(raw.Candidates, val.String())
		}
		return true
	})
	return raw
}

func intField(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return 0, false
	}
	n, err := safecast.Conv[int](r.Int())
	if err != nil {
		return 0, false
	}
	return n, true
}

// fromUTF16 converts a UTF-16 [off, off+length) pair into scalar values.
// ok is false when either end does not fall on a scalar boundary.
func fromUTF16(buf *source.Buffer, off, length int) (int, int, bool) {
	start, ok := buf.ScalarFromUTF16(off)
	if !ok {
		return 0, 0, false
	}
	end, ok := buf.ScalarFromUTF16(off + length)
	if !ok {
		return 0, 0, false
	}
	return start, end - start, true
}
