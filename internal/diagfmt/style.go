package diagfmt

import (
	"github.com/fatih/color"
)

// Role is the semantic style of a rendered fragment.
type Role uint8

const (
	// RoleNeutral is untouched text.
	RoleNeutral Role = iota
	// RoleIssue is original text covered by an annotation.
	RoleIssue
	// RoleCorrection is a suggested replacement.
	RoleCorrection
	// RoleExplanation is the provider message in verbose lines.
	RoleExplanation
)

func (r Role) String() string {
	switch r {
	case RoleNeutral:
		return "neutral"
	case RoleIssue:
		return "issue"
	case RoleCorrection:
		return "correction"
	case RoleExplanation:
		return "explanation"
	default:
		return "unknown"
	}
}

// Formatter resolves a role to concrete markup.
type Formatter interface {
	Style(role Role, text string) string
}

// Striker is implemented by formatters that can render removed text distinctly
// from a plain issue. Strike mode falls back to RoleIssue otherwise.
type Striker interface {
	Strike(text string) string
}

// ANSIFormatter renders roles as terminal escape sequences.
type ANSIFormatter struct {
	issue       *color.Color
	struck      *color.Color
	correction  *color.Color
	explanation *color.Color
}

// NewANSIFormatter returns a formatter that always emits escape sequences;
// whether the output is a terminal is decided by the caller.
func NewANSIFormatter() *ANSIFormatter {
	f := &ANSIFormatter{
		issue:       color.New(color.FgRed),
		struck:      color.New(color.FgRed, color.CrossedOut),
		correction:  color.New(color.FgGreen),
		explanation: color.New(color.Faint),
	}
	for _, c := range []*color.Color{f.issue, f.struck, f.correction, f.explanation} {
		c.EnableColor()
	}
	return f
}

func (f *ANSIFormatter) Style(role Role, text string) string {
	if text == "" {
		return ""
	}
	switch role {
	case RoleIssue:
		return f.issue.Sprint(text)
	case RoleCorrection:
		return f.correction.Sprint(text)
	case RoleExplanation:
		return f.explanation.Sprint(text)
	default:
		return text
	}
}

func (f *ANSIFormatter) Strike(text string) string {
	if text == "" {
		return ""
	}
	return f.struck.Sprint(text)
}

// PlainFormatter marks issues and corrections with wdiff-style brackets so the
// rendering survives pipes and files.
type PlainFormatter struct{}

func (PlainFormatter) Style(role Role, text string) string {
	switch role {
	case RoleIssue:
		return "[-" + text + "-]"
	case RoleCorrection:
		return "{+" + text + "+}"
	default:
		return text
	}
}

// RawFormatter emits text without any markup.
type RawFormatter struct{}

func (RawFormatter) Style(_ Role, text string) string { return text }
