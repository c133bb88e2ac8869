package driver

import "time"

// Stage describes a step of the check pipeline.
type Stage string

const (
	// StageFetch asks the provider (or the cache) for raw issues.
	StageFetch Stage = "fetch"
	// StageNormalize validates raw issues.
	StageNormalize Stage = "normalize"
	// StageResolve applies house rules and merges overlaps.
	StageResolve Stage = "resolve"
	// StageRender builds the overlay.
	StageRender Stage = "render"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is in the reported stage.
	StatusWorking Status = "working"
	// StatusDone indicates the file was checked.
	StatusDone Status = "done"
	// StatusError indicates the check failed.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole batch when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Issues  int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
