package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output path extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
	FormatChrome               // chrome://tracing "traceEvents" array
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|chrome)", s)
	}
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev)
	default:
		return formatText(ev)
	}
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time        string `json:"time"`
		Seq         uint64 `json:"seq"`
		Kind        string `json:"kind"`
		Scope       string `json:"scope"`
		SpanID      uint64 `json:"span_id"`
		ParentID    uint64 `json:"parent_id,omitempty"`
		GID         uint64 `json:"gid,omitempty"`
		Name        string `json:"name"`
		Detail      string `json:"detail,omitempty"`
		Path        string `json:"path,omitempty"`
		Attempt     int    `json:"attempt,omitempty"`
		Status      int    `json:"status,omitempty"`
		Cache       string `json:"cache,omitempty"`
		Records     int    `json:"records,omitempty"`
		Annotations int    `json:"annotations,omitempty"`
	}

	data, _ := json.Marshal(jsonEvent{
		Time:        ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:         ev.Seq,
		Kind:        ev.Kind.String(),
		Scope:       ev.Scope.String(),
		SpanID:      ev.SpanID,
		ParentID:    ev.ParentID,
		GID:         ev.GID,
		Name:        ev.Name,
		Detail:      ev.Detail,
		Path:        ev.Attrs.Path,
		Attempt:     ev.Attrs.Attempt,
		Status:      ev.Attrs.Status,
		Cache:       ev.Attrs.Cache,
		Records:     ev.Attrs.Records,
		Annotations: ev.Attrs.Annotations,
	})
	return append(data, '\n')
}

// formatChrome formats an event for the Chrome trace viewer. Separators between
// events are written by StreamTracer.
func formatChrome(ev *Event) []byte {
	type chromeEvent struct {
		Name string            `json:"name"`
		Cat  string            `json:"cat"`
		Ph   string            `json:"ph"`
		TS   int64             `json:"ts"` // микросекунды
		PID  int               `json:"pid"`
		TID  uint64            `json:"tid"`
		Args map[string]string `json:"args,omitempty"`
	}

	ph := "i"
	switch ev.Kind {
	case KindSpanBegin:
		ph = "B"
	case KindSpanEnd:
		ph = "E"
	}
	var args map[string]string
	if pairs := ev.Attrs.pairs(); len(pairs) > 0 || ev.Detail != "" {
		args = make(map[string]string, len(pairs)+1)
		for _, kv := range pairs {
			args[kv[0]] = kv[1]
		}
		if ev.Detail != "" {
			args["detail"] = ev.Detail
		}
	}

	data, _ := json.Marshal(chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   ph,
		TS:   ev.Time.UnixMicro(),
		PID:  1,
		TID:  ev.GID,
		Args: args,
	})
	return data
}

// formatText formats an event as human-readable text.
// Format: [time] [indent]→/← name (detail) {k=v}
func formatText(ev *Event) []byte {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(ev.Time.Format("15:04:05.000"))
	sb.WriteString("] ")

	// вложенность по scope, родителя может не быть в потоке
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("\u2192 ") // →
	case KindSpanEnd:
		sb.WriteString("\u2190 ") // ←
	case KindPoint:
		sb.WriteString("\u2022 ") // •
	case KindHeartbeat:
		sb.WriteString("\u2661 ") // ♡
	}

	sb.WriteString(ev.Name)

	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	if pairs := ev.Attrs.pairs(); len(pairs) > 0 {
		sb.WriteString(" {")
		for i, kv := range pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(kv[0])
			sb.WriteString("=")
			sb.WriteString(kv[1])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
