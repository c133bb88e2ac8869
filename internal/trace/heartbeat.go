package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval while a command runs.
// Each beat reports how many provider requests are still open, so a trace
// that ends in beats with requests in flight points at a stalled provider.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts beating. It returns nil, which is safe to Stop, when
// tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d, %d requests in flight", beat, InFlight()),
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the beat and waits for the goroutine. Safe to call more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
