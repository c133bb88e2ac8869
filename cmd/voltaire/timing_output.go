package main

import (
	"fmt"
	"io"

	"voltaire/internal/observ"
)

// printTimings writes per-stage durations; stages repeated across files are summed.
func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if _, err := io.WriteString(out, timer.Summary()); err != nil {
		panic(fmt.Errorf("write timings: %w", err))
	}
}
