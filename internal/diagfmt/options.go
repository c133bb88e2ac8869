package diagfmt

// RenderOptions configures the overlay rendering.
type RenderOptions struct {
	Verbose bool // строки с объяснениями
	// Strike shows the original text crossed out and immediately followed by
	// its correction in the marked line.
	Strike bool
}

// JSONOpts configures JSON output of annotations.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	IncludeOriginal  bool
	Max              int // обрезка вывода, 0 - без ограничений
}
