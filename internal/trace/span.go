package trace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
	// открытые спаны ScopeRequest; heartbeat сообщает их число
	inflight atomic.Int64

	now = time.Now
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// InFlight returns the number of provider requests and cache lookups whose
// span has begun but not ended.
func InFlight() int64 { return inflight.Load() }

// getGoroutineID parses "goroutine 123 [running]:" from runtime.Stack.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line, ok := bytes.CutPrefix(buf[:n], []byte("goroutine "))
	if !ok {
		return 0
	}
	if end := bytes.IndexByte(line, ' '); end >= 0 {
		line = line[:end]
	}
	gid, err := strconv.ParseUint(string(line), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is one traced operation. The zero-ID span returned for filtered scopes
// accepts every call and emits nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	attrs   Attrs
	ended   bool
}

var disabled = &Span{tracer: Nop}

// Begin starts a span under parent and emits its begin event. The parent's
// path is reported on both events.
func Begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return disabled
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent.SpanID,
		gid:     getGoroutineID(),
		scope:   scope,
		name:    name,
		started: now(),
		attrs:   Attrs{Path: parent.Path},
	}
	if scope == ScopeRequest {
		inflight.Add(1)
	}
	t.Emit(s.event(KindSpanBegin, "", Attrs{Path: parent.Path}))
	return s
}

func (s *Span) event(kind Kind, detail string, attrs Attrs) *Event {
	return &Event{
		Time:     now(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Attrs:    attrs,
	}
}

// End emits the end event with every attribute set so far and returns the
// span's duration. Only the first call emits.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || s.ended {
		return 0
	}
	s.ended = true
	if s.scope == ScopeRequest {
		inflight.Add(-1)
	}
	s.tracer.Emit(s.event(KindSpanEnd, detail, s.attrs))
	return time.Since(s.started)
}

// Attempt records how many provider attempts were made.
func (s *Span) Attempt(n int) *Span {
	if s.id != 0 {
		s.attrs.Attempt = n
	}
	return s
}

// Status records the HTTP status of the last provider response.
func (s *Span) Status(code int) *Span {
	if s.id != 0 {
		s.attrs.Status = code
	}
	return s
}

// Cache records the cache tier a lookup ended in.
func (s *Span) Cache(tier string) *Span {
	if s.id != 0 {
		s.attrs.Cache = tier
	}
	return s
}

// Counts records provider records and surviving annotations.
func (s *Span) Counts(records, annotations int) *Span {
	if s.id != 0 {
		s.attrs.Records = records
		s.attrs.Annotations = annotations
	}
	return s
}

// ID returns the span ID, 0 for a filtered span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
