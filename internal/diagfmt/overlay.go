package diagfmt

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"voltaire/internal/diag"
	"voltaire/internal/source"
)

// CleanMarker follows the text when no annotation survived resolution.
const CleanMarker = "✓ no issues found"

// Overlay is the rendered form of one checked text.
type Overlay struct {
	Marked       string
	Corrected    string
	Explanations []string // по возрастанию позиции
	Clean        bool
}

// Line returns the summary line: "<marked> -> <corrected>", or the text
// followed by CleanMarker.
func (o Overlay) Line() string {
	if o.Clean {
		return o.Marked + " " + CleanMarker
	}
	return o.Marked + " -> " + o.Corrected
}

// Write prints the explanation lines followed by the summary line.
func (o Overlay) Write(w io.Writer) error {
	for _, line := range o.Explanations {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, o.Line())
	return err
}

// styledRun is an immutable rendering in progress. Its prefix up to the next
// splice point is always byte-identical to the original text.
type styledRun struct {
	s string
}

func (r styledRun) splice(sp source.ByteSpan, repl string) styledRun {
	var sb strings.Builder
	sb.Grow(len(r.s) - (sp.End - sp.Start) + len(repl))
	sb.WriteString(r.s[:sp.Start])
	sb.WriteString(repl)
	sb.WriteString(r.s[sp.End:])
	return styledRun{s: sb.String()}
}

// Render produces the marked and corrected renderings of buf.
//
// annotations must be ascending and pairwise disjoint (the output of
// fix.Resolve). They are applied strictly right to left: every splice works on
// byte offsets translated against the original buffer, which stay valid because
// nothing left of the current annotation has been touched yet.
func Render(buf *source.Buffer, annotations []diag.Annotation, opts RenderOptions, f Formatter) Overlay {
	if f == nil {
		f = PlainFormatter{}
	}
	text := buf.Text()
	if len(annotations) == 0 {
		neutral := f.Style(RoleNeutral, text)
		return Overlay{Marked: neutral, Corrected: neutral, Clean: true}
	}
	checkOrder(annotations)

	marked := styledRun{s: text}
	corrected := styledRun{s: text}
	var explanations []string
	var widths explanationWidths
	if opts.Verbose {
		widths = measure(buf, annotations)
		explanations = make([]string, 0, len(annotations))
	}

	for i := len(annotations) - 1; i >= 0; i-- {
		a := annotations[i]
		sp := buf.Translate(a.Range)
		original := text[sp.Start:sp.End]

		marked = marked.splice(sp, markIssue(f, original, a.Primary(), opts.Strike))
		corrected = corrected.splice(sp, f.Style(RoleCorrection, a.Primary()))
		if opts.Verbose {
			explanations = append(explanations, explanationLine(f, a, original, widths))
		}
	}
	slices.Reverse(explanations)

	return Overlay{
		Marked:       marked.s,
		Corrected:    corrected.s,
		Explanations: explanations,
	}
}

// Corrected returns buf with every annotation replaced by its primary suggestion.
func Corrected(buf *source.Buffer, annotations []diag.Annotation) string {
	return Render(buf, annotations, RenderOptions{}, RawFormatter{}).Corrected
}

func markIssue(f Formatter, original, primary string, strike bool) string {
	if !strike {
		return f.Style(RoleIssue, original)
	}
	var struck string
	if s, ok := f.(Striker); ok {
		struck = s.Strike(original)
	} else {
		struck = f.Style(RoleIssue, original)
	}
	return struck + f.Style(RoleCorrection, primary)
}

type explanationWidths struct {
	start    int // цифры позиции
	original int // ширина фрагмента в колонках терминала
}

func measure(buf *source.Buffer, annotations []diag.Annotation) explanationWidths {
	var w explanationWidths
	for _, a := range annotations {
		w.start = max(w.start, len(strconv.Itoa(a.Start())))
		w.original = max(w.original, runewidth.StringWidth(buf.Slice(a.Range)))
	}
	return w
}

// explanationLine formats "<start>: <original> -> <s1>, <s2>: <message>",
// padding start and original so the arrows line up.
func explanationLine(f Formatter, a diag.Annotation, original string, w explanationWidths) string {
	suggestions := make([]string, len(a.Suggestions))
	for i, s := range a.Suggestions {
		suggestions[i] = f.Style(RoleCorrection, s)
	}
	pad := strings.Repeat(" ", max(w.original-runewidth.StringWidth(original), 0))

	var sb strings.Builder
	fmt.Fprintf(&sb, "%*d: ", w.start, a.Start())
	sb.WriteString(f.Style(RoleIssue, original))
	sb.WriteString(pad)
	sb.WriteString(" -> ")
	sb.WriteString(strings.Join(suggestions, ", "))
	if a.Explanation != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Style(RoleExplanation, a.Explanation))
	}
	return sb.String()
}

func checkOrder(annotations []diag.Annotation) {
	for i := 1; i < len(annotations); i++ {
		if annotations[i-1].End() > annotations[i].Start() {
			panic(fmt.Sprintf("diagfmt: annotations %s and %s are not disjoint and ascending",
				annotations[i-1].Range, annotations[i].Range))
		}
	}
}
