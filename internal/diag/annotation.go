package diag

import (
	"slices"

	"voltaire/internal/source"
)

// RawIssue is one unprocessed provider record.
type RawIssue struct {
	Message    *string
	Offset     *int // scalar values from the start of the text
	Length     *int // scalar values
	Candidates []string

	RuleID    string
	IssueType string
	Category  string
}

// Annotation is one span of the checked text with its suggested replacements.
type Annotation struct {
	Range       source.Range
	Suggestions []string
	Explanation string

	RuleID   string
	Severity Severity
	Forced   bool
	// Absorbed lists house rules whose forced annotations were merged into
	// this one; their matches are already part of the primary suggestion.
	Absorbed []string
}

func (a Annotation) Start() int { return a.Range.Start() }

func (a Annotation) End() int { return a.Range.End() }

// Primary returns the first suggestion.
func (a Annotation) Primary() string {
	if len(a.Suggestions) == 0 {
		return ""
	}
	return a.Suggestions[0]
}

// Clone returns a copy that shares no backing arrays with a.
func (a Annotation) Clone() Annotation {
	a.Suggestions = append([]string(nil), a.Suggestions...)
	if a.Absorbed != nil {
		a.Absorbed = append([]string(nil), a.Absorbed...)
	}
	return a
}

// Carries reports whether a already holds the correction of house rule ruleID
// over r: either a is that rule's forced annotation or it absorbed one.
func (a Annotation) Carries(ruleID string, r source.Range) bool {
	if a.Start() > r.Start() || a.End() < r.End() {
		return false
	}
	if a.Forced && a.RuleID == ruleID {
		return true
	}
	return slices.Contains(a.Absorbed, ruleID)
}

// NewForced builds a provider-independent annotation with a single suggestion.
func NewForced(r source.Range, replacement, explanation, ruleID string) Annotation {
	return Annotation{
		Range:       r,
		Suggestions: []string{replacement},
		Explanation: explanation,
		RuleID:      ruleID,
		Severity:    SevError,
		Forced:      true,
	}
}
