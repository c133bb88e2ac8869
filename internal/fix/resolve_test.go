package fix

import (
	"slices"
	"testing"

	"voltaire/internal/diag"
	"voltaire/internal/source"
	"voltaire/internal/testkit"
)

func ann(buf *source.Buffer, start, end int, suggestions ...string) diag.Annotation {
	return diag.Annotation{
		Range:       buf.MustRange(start, end),
		Suggestions: suggestions,
		Explanation: "msg",
		Severity:    diag.SevWarning,
	}
}

type span struct {
	start, end int
	primary    string
}

func spans(anns []diag.Annotation) []span {
	out := make([]span, 0, len(anns))
	for _, a := range anns {
		out = append(out, span{start: a.Start(), end: a.End(), primary: a.Primary()})
	}
	return out
}

func TestResolve_Merges(t *testing.T) {
	tests := []struct {
		name string
		text string
		in   func(*source.Buffer) []diag.Annotation
		want []span
	}{
		{
			name: "nested pair",
			text: "Hello",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 0, 5, "Howdy"), ann(b, 2, 5, "ey")}
			},
			want: []span{{0, 5, "Hoey"}},
		},
		{
			name: "unsorted input",
			text: "Hello",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 2, 5, "ey"), ann(b, 0, 5, "Howdy")}
			},
			want: []span{{0, 5, "Hoey"}},
		},
		{
			name: "disjoint stay apart",
			text: "The cat runs fast",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 8, 12, "run"), ann(b, 0, 3, "A")}
			},
			want: []span{{0, 3, "A"}, {8, 12, "run"}},
		},
		{
			name: "touching spans merge",
			text: "abcdef",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 0, 3, "X"), ann(b, 3, 6, "Y")}
			},
			want: []span{{0, 6, "XY"}},
		},
		{
			name: "nested chain",
			text: "abcdefgh",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{
					ann(b, 0, 8, "ABCDEFGH"),
					ann(b, 2, 6, "CDEF"),
					ann(b, 3, 4, "zz"),
				}
			},
			want: []span{{0, 8, "ABCzzEFGH"}},
		},
		{
			name: "siblings inside one span",
			text: "abcdefghij",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{
					ann(b, 0, 10, "ABCDEFGHIJ"),
					ann(b, 2, 3, "xx"),
					ann(b, 5, 6, "y"),
				}
			},
			want: []span{{0, 10, "ABxxDEyGHIJ"}},
		},
		{
			name: "overlapping chain",
			text: "abcdefghi",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{
					ann(b, 0, 4, "ABCD"),
					ann(b, 3, 7, "DEFG"),
					ann(b, 6, 9, "GHI"),
				}
			},
			want: []span{{0, 9, "ABCDEFGHI"}},
		},
		{
			name: "multi-byte text",
			text: "été là",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 0, 6, "Été là"), ann(b, 4, 6, "la")}
			},
			want: []span{{0, 6, "Été la"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := source.NewBuffer(tt.text)
			got := spans(Resolve(buf, tt.in(buf), nil))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_OutputIsDisjointAndSorted(t *testing.T) {
	buf := source.NewBuffer("Le chat noir dort sur le tapis rouge")
	in := []diag.Annotation{
		ann(buf, 25, 30, "tapis"),
		ann(buf, 3, 7, "chien"),
		ann(buf, 0, 12, "La chatte noire"),
		ann(buf, 18, 21, "sous"),
		ann(buf, 21, 24, "la"),
		ann(buf, 31, 36, "verte"),
		ann(buf, 8, 12, "blanc"),
	}
	got := Resolve(buf, in, nil)
	if err := testkit.CheckResolved(buf, got); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		rules RuleSet
		in    func(*source.Buffer) []diag.Annotation
	}{
		{
			name: "provider only",
			text: "abcdefghij",
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{
					ann(b, 0, 10, "ABCDEFGHIJ"),
					ann(b, 2, 3, "xx"),
					ann(b, 5, 6, "y"),
				}
			},
		},
		{
			name:  "with house rule",
			text:  "Bonjour emmanuel, ca va?",
			rules: DefaultRules(),
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 18, 20, "ça")}
			},
		},
		{
			name:  "house rule inside provider span",
			text:  "Bonjour emmanuel xyz",
			rules: DefaultRules(),
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 0, 20, "Bonjour emmanuel abc")}
			},
		},
		{
			name:  "house rule absorbing provider span",
			text:  "emmanuel abc",
			rules: DefaultRules(),
			in: func(b *source.Buffer) []diag.Annotation {
				return []diag.Annotation{ann(b, 6, 12, "el xyz")}
			},
		},
		{
			name:  "adjacent matches",
			text:  "emmanuelEMMANUEL",
			rules: DefaultRules(),
			in: func(*source.Buffer) []diag.Annotation {
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := source.NewBuffer(tt.text)
			once := Resolve(buf, tt.in(buf), tt.rules)
			twice := Resolve(buf, once, tt.rules)
			if !slices.Equal(spans(once), spans(twice)) {
				t.Fatalf("second pass changed output:\n once  %+v\n twice %+v", spans(once), spans(twice))
			}
		})
	}
}

func TestResolve_HouseRuleNotReapplied(t *testing.T) {
	buf := source.NewBuffer("Bonjour emmanuel xyz")
	once := Resolve(buf, []diag.Annotation{ann(buf, 0, 20, "Bonjour emmanuel abc")}, DefaultRules())
	want := []span{{0, 20, "Bonjour Emanuel abc"}}
	if !slices.Equal(spans(once), want) {
		t.Fatalf("first pass = %+v, want %+v", spans(once), want)
	}
	if !slices.Equal(once[0].Absorbed, []string{"HOUSE_EMMANUEL"}) {
		t.Fatalf("Absorbed = %v", once[0].Absorbed)
	}

	twice := Resolve(buf, once, DefaultRules())
	if !slices.Equal(spans(twice), want) {
		t.Fatalf("second pass = %+v, want %+v", spans(twice), want)
	}
}

func TestResolve_StableTies(t *testing.T) {
	buf := source.NewBuffer("abc")
	first := ann(buf, 0, 2, "first")
	first.Explanation = "first"
	second := ann(buf, 0, 3, "second")
	second.Explanation = "second"

	got := Resolve(buf, []diag.Annotation{first, second}, nil)
	if len(got) != 1 {
		t.Fatalf("expected one annotation, got %d", len(got))
	}
	if got[0].Explanation != "first" {
		t.Fatalf("merged annotation should keep the earlier record's explanation, got %q", got[0].Explanation)
	}
	if got[0].End() != 3 {
		t.Fatalf("merged range = %s, want [0,3)", got[0].Range)
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	buf := source.NewBuffer("Hello")
	in := []diag.Annotation{ann(buf, 0, 5, "Howdy", "Hi"), ann(buf, 2, 5, "ey")}
	_ = Resolve(buf, in, DefaultRules())

	if in[0].Primary() != "Howdy" || in[0].End() != 5 || len(in) != 2 {
		t.Fatalf("input was modified: %+v", in)
	}
}

func TestResolve_Empty(t *testing.T) {
	buf := source.NewBuffer("Hello world")
	if got := Resolve(buf, nil, DefaultRules()); len(got) != 0 {
		t.Fatalf("expected no annotations, got %+v", spans(got))
	}
}

func TestResolve_HouseRuleJoinsMerge(t *testing.T) {
	buf := source.NewBuffer("Salut emmanuel")
	in := []diag.Annotation{ann(buf, 0, 14, "Salut Emmanuel")}

	got := Resolve(buf, in, DefaultRules())
	want := []span{{0, 14, "Salut Emanuel"}}
	if !slices.Equal(spans(got), want) {
		t.Fatalf("Resolve() = %+v, want %+v", spans(got), want)
	}
}
