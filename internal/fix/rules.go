package fix

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"voltaire/internal/diag"
	"voltaire/internal/source"
)

// ErrEmptyPattern is returned for a rule that would match everywhere.
var ErrEmptyPattern = errors.New("house rule pattern is empty")

// Rule is a provider-independent correction: every case-insensitive occurrence
// of Pattern is replaced by Replacement.
type Rule struct {
	ID          string
	Pattern     string
	Replacement string
	Explanation string
	// Guard drops provider annotations that would rewrite an exact Replacement
	// when Pattern does not occur in the text.
	Guard bool
}

// RuleSet is an ordered list of house rules evaluated before merging.
type RuleSet []Rule

// Option mutates a rule during construction.
type Option func(*Rule)

// WithID sets a stable identifier reported as the annotation's RuleID.
func WithID(id string) Option {
	return func(r *Rule) {
		r.ID = id
	}
}

// WithoutGuard disables the guard behaviour.
func WithoutGuard() Option {
	return func(r *Rule) {
		r.Guard = false
	}
}

// NewRule validates and builds a rule. Guard is on by default.
func NewRule(pattern, replacement, explanation string, opts ...Option) (Rule, error) {
	if strings.TrimSpace(pattern) == "" {
		return Rule{}, ErrEmptyPattern
	}
	r := Rule{
		ID:          "HOUSE_" + strings.ToUpper(strings.Join(strings.Fields(pattern), "_")),
		Pattern:     pattern,
		Replacement: replacement,
		Explanation: explanation,
		Guard:       true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&r)
		}
	}
	return r, nil
}

// DefaultRules returns the built-in house rules.
func DefaultRules() RuleSet {
	r, err := NewRule("emmanuel", "Emanuel", "Qu'est ce que c'est que ce nom.")
	if err != nil {
		panic(fmt.Errorf("default house rule: %w", err))
	}
	return RuleSet{r}
}

// Find returns every non-overlapping case-insensitive occurrence of the pattern.
func (r Rule) Find(buf *source.Buffer) []source.Range {
	n := utf8.RuneCountInString(r.Pattern)
	if n == 0 || n > buf.Len() {
		return nil
	}
	// Caser хранит состояние, поэтому создаём свой на каждый вызов
	folder := cases.Fold()
	want := folder.String(r.Pattern)

	var out []source.Range
	for i := 0; i+n <= buf.Len(); {
		window := buf.MustRange(i, i+n)
		if folder.String(buf.Slice(window)) == want {
			out = append(out, window)
			i += n
			continue
		}
		i++
	}
	return out
}

// Apply appends forced annotations for every match and applies guards for
// rules that did not match. A match already carried by an annotation (a
// previous Resolve output) is skipped. The input slice may be reused.
func (rs RuleSet) Apply(buf *source.Buffer, annotations []diag.Annotation) []diag.Annotation {
	for _, rule := range rs {
		matches := rule.Find(buf)
		if len(matches) == 0 {
			if rule.Guard {
				annotations = rule.guard(buf, annotations)
			}
			continue
		}
		present := len(annotations)
		for _, m := range matches {
			if carried(annotations[:present], rule.ID, m) {
				continue
			}
			annotations = append(annotations, diag.NewForced(m, rule.Replacement, rule.Explanation, rule.ID))
		}
	}
	return annotations
}

func carried(annotations []diag.Annotation, ruleID string, m source.Range) bool {
	for _, a := range annotations {
		if a.Carries(ruleID, m) {
			return true
		}
	}
	return false
}

func (r Rule) guard(buf *source.Buffer, annotations []diag.Annotation) []diag.Annotation {
	kept := annotations[:0]
	for _, a := range annotations {
		if !a.Forced && buf.Slice(a.Range) == r.Replacement {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
