package fix

import (
	"slices"
	"sort"
	"unicode/utf8"

	"voltaire/internal/diag"
	"voltaire/internal/source"
)

// Resolve turns an unordered, possibly overlapping set of annotations over buf
// into an ascending sequence in which no two annotations overlap or touch.
//
// House rules are applied first so forced annotations take part in the same
// merge. Then annotations are stable-sorted by start and scanned from the end:
// whenever an annotation's predecessor covers or touches it, it is merged into
// the predecessor by splicing its primary suggestion into the predecessor's
// primary suggestion. The caller's slice and annotations are not modified.
func Resolve(buf *source.Buffer, annotations []diag.Annotation, rules RuleSet) []diag.Annotation {
	work := make([]diag.Annotation, 0, len(annotations)+len(rules))
	for _, a := range annotations {
		work = append(work, a.Clone())
	}
	work = rules.Apply(buf, work)
	if len(work) < 2 {
		return work
	}

	sort.SliceStable(work, func(i, j int) bool {
		return work[i].Start() < work[j].Start()
	})

	// shift[i] is the offset (in scalars) between a position in work[i]'s span
	// and the same position in its primary suggestion, caused by members merged
	// into it. Members arrive in ascending position, so the shift of everything
	// merged so far applies to the next one.
	shift := make([]int, len(work))
	for i := len(work) - 1; i >= 1; i-- {
		// после слияния справа может оказаться следующий сосед, который тоже
		// пересекается с выросшим предшественником
		for i < len(work) && work[i-1].Range.Overlaps(work[i].Range) {
			shift[i-1] += mergeInto(buf, &work[i-1], work[i], shift[i-1])
			work = slices.Delete(work, i, i+1)
			shift = slices.Delete(shift, i, i+1)
		}
	}
	return work
}

// mergeInto splices cur's primary suggestion into pred's primary suggestion at
// the position cur occupies relative to pred, and widens pred to cover cur.
// It returns how far positions right of cur move inside pred's suggestion:
// cur's span is replaced by its primary suggestion in full, even when the span
// reaches past the end of pred.
func mergeInto(buf *source.Buffer, pred *diag.Annotation, cur diag.Annotation, shift int) int {
	rel := max(cur.Start()-pred.Start()+shift, 0)
	merged := splice(pred.Primary(), rel, cur.Range.Len(), cur.Primary())
	if len(pred.Suggestions) == 0 {
		pred.Suggestions = []string{merged}
	} else {
		pred.Suggestions[0] = merged
	}
	pred.Range = buf.MustRange(pred.Start(), max(pred.End(), cur.End()))
	if cur.Forced && cur.RuleID != "" {
		pred.Absorbed = append(pred.Absorbed, cur.RuleID)
	}
	pred.Absorbed = append(pred.Absorbed, cur.Absorbed...)
	return utf8.RuneCountInString(cur.Primary()) - cur.Range.Len()
}

// splice replaces n scalars of s starting at scalar at with repl. Bounds are
// clamped to s, so a member reaching past the end of s is appended.
func splice(s string, at, n int, repl string) string {
	runes := []rune(s)
	at = min(at, len(runes))
	end := min(at+n, len(runes))
	return string(runes[:at]) + repl + string(runes[end:])
}
