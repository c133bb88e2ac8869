// Package diag defines the annotation model produced from a grammar checker's
// raw findings.
//
// # Purpose
//
//   - Describe what the analysis provider reports (RawIssue) and what the rest of
//     the pipeline consumes (Annotation).
//   - Normalize raw records: reject malformed ones, cap the number of replacement
//     candidates, and bind each record to a validated source.Range.
//
// # Scope
//
// Package diag does not talk to the network, order or merge annotations, or
// render anything. Ordering and merging live in internal/fix, rendering in
// internal/diagfmt, transport in internal/provider.
//
// # Data model
//
// RawIssue mirrors one provider match. Message, Offset and Length are pointers:
// a nil field means the provider did not send it, which makes the record
// malformed. Offsets are counted in Unicode scalar values.
//
// Annotation is the central record:
//
//   - Range – validated [start, end) in scalar values of the checked Buffer.
//   - Suggestions – 1..max candidates in provider order; Suggestions[0] is the
//     primary one and the only suggestion the resolver ever rewrites.
//   - Explanation – human oriented rationale.
//   - RuleID, Severity – provider metadata, informational only.
//   - Forced – set for house-rule annotations that do not come from the provider.
//   - Absorbed – house rules merged into the annotation, so resolving the
//     output again does not re-apply them.
//
// Annotations are never persisted; they live for one check.
package diag
