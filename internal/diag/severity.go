package diag

import "strings"

// Severity defines the importance of an annotation.
type Severity uint8

const (
	// SevInfo is for stylistic hints.
	SevInfo Severity = iota
	// SevWarning is for typography and questionable usage.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// SeverityFromIssueType maps a LanguageTool rule.issueType onto a Severity.
func SeverityFromIssueType(issueType string) Severity {
	switch strings.ToLower(strings.TrimSpace(issueType)) {
	case "misspelling", "grammar", "inconsistency", "mistranslation", "untranslated":
		return SevError
	case "typographical", "whitespace", "duplication", "uncategorized", "":
		return SevWarning
	default:
		// style, register, locale-violation, ...
		return SevInfo
	}
}
