package santafmt

import (
	"bytes"
	"strings"

	"github.com/teleivo/santafmt/internal/layout"
	"github.com/teleivo/santafmt/printer"
)

// ParseError wraps every syntax error collected while parsing a source
// file. Errors preserves parser.go's Error values (position plus message)
// so callers can report every problem found, not just the first.
type ParseError struct {
	Errors []Error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	for i, err := range e.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Format parses src as santa-lang source and returns it reformatted in the
// requested Format. A non-nil error is either a *ParseError (syntax errors,
// src returned unchanged semantics) or an I/O-level error from the parser's
// reader.
func Format(src []byte, ft layout.Format) ([]byte, error) {
	p, err := NewParser(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, &ParseError{Errors: errs}
	}

	var buf bytes.Buffer
	if err := printer.New(&buf, ft).Print(prog); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsFormatted reports whether src is already in santafmt's canonical form:
// formatting it is a no-op. A syntax error is returned unchanged, the same
// as Format.
func IsFormatted(src []byte) (bool, error) {
	out, err := Format(src, layout.Default)
	if err != nil {
		return false, err
	}
	return bytes.Equal(src, out), nil
}
