package printer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/teleivo/assertive/require"
	"github.com/teleivo/santafmt"
	"github.com/teleivo/santafmt/internal/layout"
	"github.com/teleivo/santafmt/printer"
)

func format(t *testing.T, in string) string {
	t.Helper()
	p, err := santafmt.NewParser(strings.NewReader(in))
	require.NoErrorf(t, err, "NewParser(%q)", in)
	prog, err := p.Parse()
	require.NoErrorf(t, err, "Parse(%q)", in)
	require.EqualValuesf(t, 0, len(p.Errors()), "Parse(%q) errors: %v", in, p.Errors())

	var buf bytes.Buffer
	err = printer.New(&buf, layout.Default).Print(prog)
	require.NoErrorf(t, err, "Print(%q)", in)
	return buf.String()
}

// TestPrint covers santafmt's named end-to-end formatting scenarios.
func TestPrint(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"LetBindingSpacing": {
			in:   "let x=1+2;",
			want: "let x = 1 + 2\n",
		},
		"ListLiteralSpacing": {
			in:   "[1,2,3];",
			want: "[1, 2, 3]\n",
		},
		"LambdaInlining": {
			in:   "|x|x+1;",
			want: "|x| x + 1\n",
		},
		"DictShorthand": {
			in:   `#{"foo":foo,"bar":bar};`,
			want: "#{foo, bar}\n",
		},
		"PipeChainForcedBreak": {
			in:   "input |> lines |> filter(is_nice?) |> size;",
			want: "input\n  |> lines\n  |> filter(is_nice?)\n  |> size\n",
		},
		"RightAssociativitySubtractionPreserved": {
			in:   "a - (b - c);",
			want: "a - (b - c)\n",
		},
		"PuzzlePartAlwaysBraced": {
			in:   "part_one: { 2 }",
			want: "part_one: {\n  2\n}\n",
		},
		"ParenthesizedPipeInitialOperandPreserved": {
			in:   "(a || b) |> f;",
			want: "(a || b) |> f\n",
		},
		"ParenthesizedCompositionOperandPreserved": {
			in:   "(a && b) >> f;",
			want: "(a && b) >> f\n",
		},
		"ParenthesizedRangeFromOperandPreserved": {
			in:   "(a || b)..10;",
			want: "(a || b)..10\n",
		},
		"AssignExprAsBlockResultIsABindingNoSemicolonInserted": {
			in:   "|x| {\n  let mut y = 1;\n  y = 2\n};",
			want: "|x| {\n  let mut y = 1\n  y = 2\n}\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := format(t, tt.in)
			require.EqualValuesf(t, tt.want, got, "formatting %q", tt.in)
		})
	}
}

func TestPrintIsIdempotent(t *testing.T) {
	ins := []string{
		"let x = 1 + 2;",
		"[1, 2, 3];",
		"|x| x + 1;",
		"#{foo, bar};",
		"input\n  |> lines\n  |> filter(is_nice?)\n  |> size;",
		"a - (b - c);",
		"part_one: {\n  2\n}",
		"if a { 1 } else { 2 };",
		"match x {\n  1 => \"one\",\n  _ => \"other\",\n}",
	}

	for _, in := range ins {
		once := format(t, in)
		twice := format(t, once)
		require.EqualValuesf(t, once, twice, "formatting %q a second time should be a no-op", in)
	}
}

func TestPrintLambdaForcesBlockWhenMultiStatement(t *testing.T) {
	got := format(t, "each(xs, |x| {\n  puts(x);\n  puts(x);\n});")
	require.EqualValuesf(t, "each(xs) |x| {\n  puts(x);\n  puts(x)\n}\n", got, "a multi-statement trailing lambda always renders in trailing block form")
}

func TestPrintTrailingClosureInlinesWhenItFits(t *testing.T) {
	got := format(t, "each(xs) |x| { puts(x); }")
	require.EqualValuesf(t, "each(xs, |x| puts(x))\n", got, "single-statement trailing closure should inline")
}

func TestPrintSectionWithAttribute(t *testing.T) {
	got := format(t, "@test\ntest: 1;")
	require.EqualValuesf(t, "@test\ntest: 1\n", got, "section with attribute")
}

func TestPrintCommentsSurviveFormatting(t *testing.T) {
	got := format(t, "// leading\nlet x = 1; // trailing\n")
	require.EqualValuesf(t, "// leading\n\nlet x = 1 // trailing\n", got, "comments should be preserved")
}
