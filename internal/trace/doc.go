// Package trace provides structured tracing for voltaire runs.
//
// A check goes through a handful of stages (fetch, normalize, resolve,
// render) and usually one network round trip. Tracing shows where the time went
// and, in ring mode, keeps the last events around for a dump when a run fails.
//
// # Usage
//
//	voltaire check --trace=- --trace-level=detail "Bonjour emmanuel"
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer dumped on failure
//   - MultiTracer: combines several tracers
//
// # Levels and scopes
//
//   - LevelPhase: ScopeDriver and ScopeStage events
//   - LevelDetail: adds ScopeRequest (provider round trips, cache lookups)
//   - LevelDebug: adds ScopeIssue (one event per dropped or merged record)
//
// # Context Propagation
//
// The tracer, the parent span and the checked path travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithPath(ctx, "notes.md")
//
//	span, ctx := trace.Start(ctx, trace.ScopeStage, "fetch")
//	defer span.End("")
//
// Spans carry typed attributes (Attempt, Status, Cache, Counts) that every
// output format reports next to the path.
package trace
