package trace

import (
	"strconv"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // начало проверки, стадии или запроса
	KindSpanEnd
	KindPoint     // мгновенное событие, например отброшенная запись
	KindHeartbeat // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver is one checked input (argument, stdin or file).
	ScopeDriver Scope = iota + 1
	// ScopeStage is one pipeline stage: fetch, normalize, resolve, render.
	ScopeStage
	// ScopeRequest is a provider round trip or a cache lookup.
	ScopeRequest
	// ScopeIssue is a single provider record.
	ScopeIssue
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeStage:
		return "stage"
	case ScopeRequest:
		return "request"
	case ScopeIssue:
		return "issue"
	default:
		return "unknown"
	}
}

// Attrs are the check-specific fields of an event. Zero values mean "not set"
// and are left out of every output format.
type Attrs struct {
	Path        string // input being checked, inherited from the context
	Attempt     int    // provider attempts made
	Status      int    // HTTP status of the last provider response
	Cache       string // cache tier of a lookup: miss, memory or disk
	Records     int    // provider records in the response
	Annotations int    // annotations left after resolution
}

// pairs returns the set fields in a fixed order.
func (a Attrs) pairs() [][2]string {
	var out [][2]string
	if a.Path != "" {
		out = append(out, [2]string{"path", a.Path})
	}
	if a.Attempt != 0 {
		out = append(out, [2]string{"attempt", strconv.Itoa(a.Attempt)})
	}
	if a.Status != 0 {
		out = append(out, [2]string{"status", strconv.Itoa(a.Status)})
	}
	if a.Cache != "" {
		out = append(out, [2]string{"cache", a.Cache})
	}
	if a.Records != 0 {
		out = append(out, [2]string{"records", strconv.Itoa(a.Records)})
	}
	if a.Annotations != 0 {
		out = append(out, [2]string{"annotations", strconv.Itoa(a.Annotations)})
	}
	return out
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global sequence number (monotonic)
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	GID      uint64 // goroutine ID, tells batch workers apart
	Name     string // "check", "fetch", "provider.fetch", "normalize.drop"...
	Detail   string
	Attrs    Attrs
}
