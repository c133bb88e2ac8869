package diag

import (
	"voltaire/internal/source"
)

// DefaultMaxSuggestions is the candidate cap used when the caller has no preference.
const DefaultMaxSuggestions = 3

// Normalize turns raw provider records into annotations over buf.
// Malformed or non-actionable records are dropped; input order is preserved.
func Normalize(buf *source.Buffer, raws []RawIssue, maxSuggestions int) []Annotation {
	out := make([]Annotation, 0, len(raws))
	for i := range raws {
		if a, ok := NormalizeOne(buf, raws[i], maxSuggestions); ok {
			out = append(out, a)
		}
	}
	return out
}

// NormalizeOne validates a single record. ok is false when the record lacks a
// message, offset or length, points outside buf, or has no candidates.
func NormalizeOne(buf *source.Buffer, raw RawIssue, maxSuggestions int) (Annotation, bool) {
	if raw.Message == nil || raw.Offset == nil || raw.Length == nil {
		return Annotation{}, false
	}
	off, length := *raw.Offset, *raw.Length
	if off < 0 || length < 0 {
		return Annotation{}, false
	}
	r, err := buf.Range(off, off+length)
	if err != nil {
		return Annotation{}, false
	}

	if maxSuggestions < 1 {
		maxSuggestions = 1
	}
	n := min(len(raw.Candidates), maxSuggestions)
	if n == 0 {
		return Annotation{}, false
	}
	suggestions := make([]string, n)
	copy(suggestions, raw.Candidates[:n])

	return Annotation{
		Range:       r,
		Suggestions: suggestions,
		Explanation: *raw.Message,
		RuleID:      raw.RuleID,
		Severity:    SeverityFromIssueType(raw.IssueType),
	}, true
}
