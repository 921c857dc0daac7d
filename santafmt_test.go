package santafmt_test

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
	"github.com/teleivo/santafmt"
	"github.com/teleivo/santafmt/internal/layout"
)

func TestFormatEndToEndScenarios(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"LetBindingSpacing":   {in: "let x=1+2;", want: "let x = 1 + 2\n"},
		"ListLiteralSpacing":  {in: "[1,2,3];", want: "[1, 2, 3]\n"},
		"LambdaInlining":      {in: "|x|x+1;", want: "|x| x + 1\n"},
		"DictShorthand":       {in: `#{"foo":foo,"bar":bar};`, want: "#{foo, bar}\n"},
		"PuzzlePartBraced":    {in: "part_one: { 2 }", want: "part_one: {\n  2\n}\n"},
		"RightAssociativity":  {in: "a - (b - c);", want: "a - (b - c)\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := santafmt.Format([]byte(tt.in), layout.Default)
			require.NoErrorf(t, err, "Format(%q)", tt.in)
			assert.EqualValuesf(t, tt.want, string(out), "Format(%q)", tt.in)
		})
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	ins := []string{
		"let x = 1 + 2;",
		"[1, 2, 3];",
		"|x| x + 1;",
		"#{foo, bar};",
		"a - (b - c);",
		"part_one: {\n  2\n}",
		"input\n  |> lines\n  |> size;",
	}

	for _, in := range ins {
		once, err := santafmt.Format([]byte(in), layout.Default)
		require.NoErrorf(t, err, "Format(%q)", in)
		twice, err := santafmt.Format(once, layout.Default)
		require.NoErrorf(t, err, "Format of already-formatted output")
		assert.EqualValuesf(t, string(once), string(twice), "Format should be idempotent on %q", in)
	}
}

func TestFormatNoTrailingWhitespace(t *testing.T) {
	out, err := santafmt.Format([]byte("let x = [1, 2, 3];"), layout.Default)
	require.NoErrorf(t, err, "Format")
	for _, line := range strings.Split(string(out), "\n") {
		assert.EqualValuesf(t, strings.TrimRight(line, " \t"), line, "line %q has trailing whitespace", line)
	}
}

func TestFormatEndsWithExactlyOneTrailingNewline(t *testing.T) {
	out, err := santafmt.Format([]byte("let x = 1;"), layout.Default)
	require.NoErrorf(t, err, "Format")
	assert.EqualValuesf(t, true, strings.HasSuffix(string(out), "\n"), "output should end with a newline")
	assert.EqualValuesf(t, false, strings.HasSuffix(string(out), "\n\n"), "output should not end with a blank line")
}

func TestFormatEmptyInputYieldsEmptyOutput(t *testing.T) {
	out, err := santafmt.Format([]byte(""), layout.Default)
	require.NoErrorf(t, err, "Format")
	assert.EqualValuesf(t, "", string(out), "formatting empty input should produce empty output")
}

func TestIsFormatted(t *testing.T) {
	formatted, err := santafmt.Format([]byte("let x=1;"), layout.Default)
	require.NoErrorf(t, err, "Format")

	ok, err := santafmt.IsFormatted(formatted)
	require.NoErrorf(t, err, "IsFormatted(formatted)")
	assert.EqualValuesf(t, true, ok, "IsFormatted should report true for already-formatted source")

	ok, err = santafmt.IsFormatted([]byte("let x=1;"))
	require.NoErrorf(t, err, "IsFormatted(unformatted)")
	assert.EqualValuesf(t, false, ok, "IsFormatted should report false for unformatted source")
}

func TestFormatReturnsParseErrorOnSyntaxError(t *testing.T) {
	_, err := santafmt.Format([]byte("let x = ;"), layout.Default)
	require.NotNilf(t, err, "expected a parse error")
	var parseErr *santafmt.ParseError
	ok := errorsAs(err, &parseErr)
	assert.EqualValuesf(t, true, ok, "error should be a *santafmt.ParseError, got %T", err)
}

func errorsAs(err error, target **santafmt.ParseError) bool {
	pe, ok := err.(*santafmt.ParseError)
	if ok {
		*target = pe
	}
	return ok
}
