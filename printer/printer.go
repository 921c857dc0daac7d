// Package printer formats a parsed santa-lang program in the spirit of
// [gofumpt], translating its AST into a layout.Doc (see Build) and
// rendering that Doc to a writer.
//
// Printer takes an already-parsed *ast.Program rather than a reader: the
// Lexer and Parser (root santafmt package, lexer.go and parser.go) sit one
// level up the import graph, since
// santafmt.go itself depends on this package to implement Format and
// IsFormatted.
//
// [gofumpt]: https://github.com/mvdan/gofumpt
package printer

import (
	"io"

	"github.com/teleivo/santafmt/ast"
	"github.com/teleivo/santafmt/internal/layout"
)

// Printer formats santa-lang code.
type Printer struct {
	w      io.Writer
	format layout.Format
}

// New creates a Printer that writes formatted output to w. format controls
// the output representation (Default, Tree, or Go), the same knob
// teleivo/dot's Printer exposes for debugging the Doc a program built.
func New(w io.Writer, format layout.Format) *Printer {
	return &Printer{w: w, format: format}
}

// Print builds prog's Doc and renders it to the Printer's writer.
func (p *Printer) Print(prog *ast.Program) error {
	return layout.Render(p.w, Build(prog), p.format)
}
