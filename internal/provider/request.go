package provider

import (
	"net/url"
	"strings"
)

// DefaultLanguage is the language sent when a request does not set one.
const DefaultLanguage = "fr"

// Request is one text to check.
type Request struct {
	Text          string
	Language      string   // код языка LanguageTool, "auto" для автоопределения
	Level         string   // "default" или "picky"
	DisabledRules []string // идентификаторы правил LanguageTool
}

// Normalized fills defaults and drops empty rule IDs, so that equal requests
// compare and hash equal.
func (r Request) Normalized() Request {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Level == "default" {
		r.Level = ""
	}
	rules := make([]string, 0, len(r.DisabledRules))
	for _, id := range r.DisabledRules {
		if id = strings.TrimSpace(id); id != "" {
			rules = append(rules, id)
		}
	}
	r.DisabledRules = rules
	return r
}

func (r Request) form() url.Values {
	r = r.Normalized()
	form := url.Values{}
	form.Set("text", r.Text)
	form.Set("language", r.Language)
	form.Set("enabledOnly", "false")
	if r.Level != "" {
		form.Set("level", r.Level)
	}
	if len(r.DisabledRules) > 0 {
		form.Set("disabledRules", strings.Join(r.DisabledRules, ","))
	}
	return form
}
