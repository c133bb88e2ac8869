package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer writes each event as it is emitted. Write errors are dropped:
// a broken trace file must not fail the check.
type StreamTracer struct {
	mu      sync.Mutex
	w       io.Writer
	level   Level
	format  Format
	written int
	closed  bool
}

// NewStreamTracer creates a StreamTracer. The Chrome format opens its
// traceEvents array right away and closes it in Close.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n")
	}
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.format == FormatChrome && t.written > 0 {
		_, _ = io.WriteString(t.w, ",\n")
	}
	_, _ = t.w.Write(data)
	t.written++
}

// Flush forwards to the writer when it buffers (bufio.Writer and the like).
func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close ends the Chrome array, flushes, and closes files other than stdout
// and stderr. Calling it twice is a no-op.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.format == FormatChrome {
		_, _ = io.WriteString(t.w, "\n]}\n")
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if t.w == os.Stderr || t.w == os.Stdout {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
