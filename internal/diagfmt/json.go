package diagfmt

import (
	"encoding/json"
	"io"

	"voltaire/internal/diag"
	"voltaire/internal/source"
)

// LocationJSON представляет местоположение фрагмента для JSON
type LocationJSON struct {
	Start     int `json:"start"` // в скалярах
	End       int `json:"end"`
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
	StartLine int `json:"start_line,omitempty"`
	StartCol  int `json:"start_col,omitempty"`
	EndLine   int `json:"end_line,omitempty"`
	EndCol    int `json:"end_col,omitempty"`
}

// AnnotationJSON представляет аннотацию в JSON формате
type AnnotationJSON struct {
	Severity    string       `json:"severity"`
	RuleID      string       `json:"rule_id,omitempty"`
	Message     string       `json:"message"`
	Original    string       `json:"original,omitempty"`
	Suggestions []string     `json:"suggestions"`
	Forced      bool         `json:"forced,omitempty"`
	Location    LocationJSON `json:"location"`
}

// CheckJSON is the result for one checked text.
type CheckJSON struct {
	Path        string           `json:"path,omitempty"`
	Text        string           `json:"text"`
	Corrected   string           `json:"corrected"`
	Annotations []AnnotationJSON `json:"annotations"`
	Count       int              `json:"count"`
}

// ReportOutput представляет корневую структуру JSON вывода
type ReportOutput struct {
	Results []CheckJSON `json:"results"`
	Count   int         `json:"count"` // аннотаций во всех результатах
}

func makeLocation(buf *source.Buffer, r source.Range, includePositions bool) LocationJSON {
	sp := buf.Translate(r)
	loc := LocationJSON{
		Start:     r.Start(),
		End:       r.End(),
		StartByte: sp.Start,
		EndByte:   sp.End,
	}
	if includePositions {
		start, end := buf.LineCol(r.Start()), buf.LineCol(r.End())
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

// BuildCheckOutput формирует структуру JSON-вывода без сериализации.
// Corrected always reflects every annotation, even when opts.Max truncates the list.
func BuildCheckOutput(path string, buf *source.Buffer, annotations []diag.Annotation, opts JSONOpts) CheckJSON {
	n := len(annotations)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := CheckJSON{
		Path:        path,
		Text:        buf.Text(),
		Corrected:   Corrected(buf, annotations),
		Annotations: make([]AnnotationJSON, 0, n),
	}
	for _, a := range annotations[:n] {
		aj := AnnotationJSON{
			Severity:    a.Severity.String(),
			RuleID:      a.RuleID,
			Message:     a.Explanation,
			Suggestions: append([]string(nil), a.Suggestions...),
			Forced:      a.Forced,
			Location:    makeLocation(buf, a.Range, opts.IncludePositions),
		}
		if opts.IncludeOriginal {
			aj.Original = buf.Slice(a.Range)
		}
		out.Annotations = append(out.Annotations, aj)
	}
	out.Count = len(out.Annotations)
	return out
}

// JSON сериализует результаты с отступами.
func JSON(w io.Writer, results ...CheckJSON) error {
	output := ReportOutput{Results: results}
	if output.Results == nil {
		output.Results = []CheckJSON{}
	}
	for _, r := range results {
		output.Count += r.Count
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
