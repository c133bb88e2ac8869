package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// batch workers emit concurrently.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool // Level() > LevelOff
}

// Nop is the tracer used when tracing is off.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// StorageMode selects where events go: --trace-mode.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped if the command fails
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a --trace-mode value.
func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config mirrors the --trace* flags.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks by OutputPath extension
	Output     io.Writer // overrides OutputPath
	OutputPath string    // "" or "-" for stderr
	RingSize   int       // default 4096
}

// New builds the tracer described by cfg. ModeBoth fans out to a stream and
// a ring.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	wantStream := cfg.Mode == ModeStream || cfg.Mode == ModeBoth
	wantRing := cfg.Mode == ModeRing || cfg.Mode == ModeBoth
	if !wantStream && !wantRing {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	var tracers []Tracer
	if wantStream {
		w, err := cfg.writer()
		if err != nil {
			return nil, err
		}
		tracers = append(tracers, NewStreamTracer(w, cfg.Level, cfg.format()))
	}
	if wantRing {
		tracers = append(tracers, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(tracers) == 1 {
		return tracers[0], nil
	}
	return NewMultiTracer(cfg.Level, tracers...), nil
}

// format resolves FormatAuto: *.ndjson is NDJSON, *.json is a Chrome trace,
// anything else (stderr included) is text.
func (cfg Config) format() Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	switch strings.ToLower(filepath.Ext(cfg.OutputPath)) {
	case ".ndjson":
		return FormatNDJSON
	case ".json":
		return FormatChrome
	default:
		return FormatText
	}
}

func (cfg Config) writer() (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
