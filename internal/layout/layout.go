// Package layout implements the document algebra and line-fitting printer
// that the santa-lang formatter is built on: a small Wadler–Lindig style
// pretty-printer adapted with soft/hard/blank lines and an IfBreak
// primitive.
//
// A [Doc] is built by chaining the package-level constructors ([Text],
// [Line], [HardLine], [BlankLine], [Group], [Nest], [IfBreak], [Concat])
// and rendered with [Render]. Doc values are immutable once built and may
// be freely shared between parents, since rendering never mutates them.
//
// # Acknowledgments
//
// The two-phase measure-then-layout shape of the renderer, the `Default` /
// `Tree` / `Go` debug output modes, and the overall package API
// (NewDoc-free constructors feeding a single Render call) follow the
// design of the teleivo/dot formatter's internal/layout package, itself a
// Go port of mcyoung's "allman" layout engine described in "The Art of
// Formatting Code". This package generalizes that design so every
// conditional is an explicit IfBreak over two full sub-documents rather
// than a single conditionally-rendered tag.
package layout

import (
	"fmt"
	"io"
	"strings"
)

// Format specifies the output representation for rendering a [Doc].
type Format int

const (
	// Default renders the formatted source text.
	Default Format = iota
	// Tree renders the Doc structure as indented HTML-like markup, useful
	// for debugging why a group broke.
	Tree
	// Go renders the Doc as a runnable Go program that reproduces it,
	// useful for minimizing a failing layout.
	Go
)

// LineWidth is the maximum number of columns a Group is allowed to occupy
// before its Line/IfBreak content is rendered in break mode.
const LineWidth = 100

// IndentSize is the number of spaces one unit of [Nest] contributes.
const IndentSize = 2

// maxMeasureDepth bounds the work done measuring whether a Group fits flat,
// guarding against pathological nesting.
const maxMeasureDepth = 10000

// kind discriminates the variant a Doc node holds.
type kind int

const (
	kindNil kind = iota
	kindText
	kindLine
	kindHardLine
	kindBlankLine
	kindConcat
	kindGroup
	kindNest
	kindIfBreak
)

// Doc is a node of the document algebra: Nil, Text, Line (soft line),
// HardLine, BlankLine, Concat, Group, Nest or IfBreak, exactly the variants
// of the document algebra. Doc values are immutable; build a tree with the
// constructors below and render it with [Render].
type Doc struct {
	kind kind

	text string // kindText

	docs []*Doc // kindConcat

	inner *Doc // kindGroup, kindNest
	n     int  // kindNest: additional indent columns

	broken *Doc // kindIfBreak: rendered when the enclosing Group breaks
	flat   *Doc // kindIfBreak: rendered when the enclosing Group stays flat
}

// Nil is the empty document. It is the identity element of [Concat].
var Nil = &Doc{kind: kindNil}

// Text is literal ASCII text; its printed width equals its byte length.
// User string content must already be escaped before being
// wrapped in Text.
func Text(s string) *Doc {
	if s == "" {
		return Nil
	}
	return &Doc{kind: kindText, text: s}
}

// Line is a soft line: a single space when its enclosing Group renders
// flat, or a newline followed by the current indent when it breaks.
func Line() *Doc { return lineDoc }

var lineDoc = &Doc{kind: kindLine}

// HardLine always renders as a newline followed by the current indent,
// forcing its enclosing Group to break.
func HardLine() *Doc { return hardLineDoc }

var hardLineDoc = &Doc{kind: kindHardLine}

// BlankLine renders a newline with no indentation, producing a visually
// empty separator line between statements without trailing whitespace. Like
// HardLine it forces its enclosing Group to break.
func BlankLine() *Doc { return blankLineDoc }

var blankLineDoc = &Doc{kind: kindBlankLine}

// Concat concatenates docs in order. Nested Concats are spliced and Nil
// entries dropped; this is a pure construction-time optimization, not
// semantically observable.
func Concat(docs ...*Doc) *Doc {
	flat := make([]*Doc, 0, len(docs))
	for _, d := range docs {
		appendFlattened(&flat, d)
	}
	switch len(flat) {
	case 0:
		return Nil
	case 1:
		return flat[0]
	default:
		return &Doc{kind: kindConcat, docs: flat}
	}
}

func appendFlattened(out *[]*Doc, d *Doc) {
	if d == nil || d.kind == kindNil {
		return
	}
	if d.kind == kindConcat {
		for _, c := range d.docs {
			appendFlattened(out, c)
		}
		return
	}
	*out = append(*out, d)
}

// Group marks inner as a unit that is rendered flat if it fits within the
// remaining width of the current line, or broken across multiple lines
// otherwise. A Group containing a HardLine or BlankLine never fits flat.
func Group(inner *Doc) *Doc {
	if inner.kind == kindNil {
		return Nil
	}
	return &Doc{kind: kindGroup, inner: inner}
}

// Nest increases the current indent by n columns while rendering inner.
// nest(a, nest(b, d)) behaves identically to nest(a+b, d).
func Nest(n int, inner *Doc) *Doc {
	if inner.kind == kindNil {
		return Nil
	}
	if inner.kind == kindNest {
		return &Doc{kind: kindNest, n: n + inner.n, inner: inner.inner}
	}
	return &Doc{kind: kindNest, n: n, inner: inner}
}

// IfBreak renders broken when the enclosing Group is in break mode, or flat
// when it is in flat mode. Rendering IfBreak is equivalent to rendering the
// chosen branch directly.
func IfBreak(broken, flat *Doc) *Doc {
	if broken.kind == kindNil && flat.kind == kindNil {
		return Nil
	}
	return &Doc{kind: kindIfBreak, broken: broken, flat: flat}
}

// SoftLine is nil in flat mode and a hard line in break mode: unlike Line
// it contributes no space when flat. Used by [Bracketed] around the
// opening/closing delimiter.
func SoftLine() *Doc { return IfBreak(HardLine(), Nil) }

// Join concatenates docs, inserting sep between consecutive elements.
func Join(docs []*Doc, sep *Doc) *Doc {
	out := make([]*Doc, 0, 2*len(docs))
	for i, d := range docs {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, d)
	}
	return Concat(out...)
}

// Bracketed renders a delimited, comma-separated sequence that stays on one
// line when it fits and otherwise breaks one element per line, indented two
// columns past open:
//
//	group( open · nest(2, soft_line · join(elems, sep) · trailing) · soft_line · close )
func Bracketed(open *Doc, elems []*Doc, close *Doc, trailingComma bool) *Doc {
	if len(elems) == 0 {
		return Concat(open, close)
	}
	var trailing *Doc
	if trailingComma {
		trailing = IfBreak(Text(","), Nil)
	} else {
		trailing = Nil
	}
	// sep must also emit the break-mode newline; IfBreak(",", ", ") alone
	// would print every element on the same broken line. Compose the
	// separator together with the hard line it needs when broken.
	sepWithBreak := Concat(IfBreak(Text(","), Text(", ")), IfBreak(HardLine(), Nil))
	body := Concat(SoftLine(), Join(elemsWithoutLast(elems, sepWithBreak), Nil), trailing)
	return Group(Concat(open, Nest(IndentSize, body), SoftLine(), close))
}

// elemsWithoutLast interleaves elems with sep after every element except
// the last, since the trailing separator (comma or not) is handled by the
// caller via trailingComma.
func elemsWithoutLast(elems []*Doc, sep *Doc) []*Doc {
	out := make([]*Doc, 0, 2*len(elems))
	for i, e := range elems {
		out = append(out, e)
		if i < len(elems)-1 {
			out = append(out, sep)
		}
	}
	return out
}

// mode is the printer's current rendering mode for the Doc it is visiting.
type mode int

const (
	modeBreak mode = iota
	modeFlat
)

// frame is one entry of the printer's explicit work stack.
type frame struct {
	indent int
	mode   mode
	doc    *Doc
}

// Render writes doc to w in the given debug Format. Default renders the
// formatted source text; Tree and Go are debugging aids that do not run the
// measure/layout algorithm.
func Render(w io.Writer, doc *Doc, format Format) error {
	switch format {
	case Default:
		return render(w, doc)
	case Tree:
		_, err := io.WriteString(w, Describe(doc))
		return err
	case Go:
		_, err := io.WriteString(w, GoString(doc))
		return err
	default:
		return fmt.Errorf("layout: unknown format %d", format)
	}
}

// render runs the iterative work-stack printer: a Doc tree is walked with an
// explicit frame stack rather than recursion, so deeply nested documents
// never risk a stack overflow.
func render(w io.Writer, root *Doc) error {
	var out strings.Builder

	stack := []frame{{indent: 0, mode: modeBreak, doc: root}}
	column := 0

	push := func(fs ...frame) {
		stack = append(stack, fs...)
	}
	pop := func() frame {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return f
	}

	for len(stack) > 0 {
		f := pop()
		d := f.doc

		switch d.kind {
		case kindNil:
			// nothing

		case kindText:
			out.WriteString(d.text)
			column += len(d.text)

		case kindLine:
			if f.mode == modeFlat {
				out.WriteByte(' ')
				column++
			} else {
				writeNewline(&out, f.indent)
				column = f.indent
			}

		case kindHardLine:
			writeNewline(&out, f.indent)
			column = f.indent

		case kindBlankLine:
			out.WriteByte('\n')
			column = 0

		case kindConcat:
			// push children in reverse so they pop left to right
			for i := len(d.docs) - 1; i >= 0; i-- {
				push(frame{indent: f.indent, mode: f.mode, doc: d.docs[i]})
			}

		case kindNest:
			push(frame{indent: f.indent + d.n, mode: f.mode, doc: d.inner})

		case kindIfBreak:
			if f.mode == modeFlat {
				push(frame{indent: f.indent, mode: f.mode, doc: d.flat})
			} else {
				push(frame{indent: f.indent, mode: f.mode, doc: d.broken})
			}

		case kindGroup:
			if f.mode == modeFlat {
				push(frame{indent: f.indent, mode: modeFlat, doc: d.inner})
				continue
			}
			if fits(d.inner, LineWidth-column) {
				push(frame{indent: f.indent, mode: modeFlat, doc: d.inner})
			} else {
				push(frame{indent: f.indent, mode: modeBreak, doc: d.inner})
			}

		default:
			return fmt.Errorf("layout: unhandled doc kind %d", d.kind)
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func writeNewline(out *strings.Builder, indent int) {
	out.WriteByte('\n')
	for i := 0; i < indent; i++ {
		out.WriteByte(' ')
	}
}

// fits walks doc as if every Group within it rendered flat, summing printed
// width, and fails (returns false) as soon as a HardLine/BlankLine is
// encountered, the budget is exceeded, or the safety depth cap is hit.
func fits(doc *Doc, budget int) bool {
	ok, _ := measureFlat(doc, budget, 0)
	return ok
}

// measureFlat returns whether doc fits within budget columns when rendered
// flat, and the remaining budget after doc. depth guards against
// pathological nesting.
func measureFlat(doc *Doc, budget, depth int) (bool, int) {
	if depth > maxMeasureDepth {
		return false, budget
	}
	if budget < 0 {
		return false, budget
	}

	switch doc.kind {
	case kindNil:
		return true, budget
	case kindText:
		w := len(doc.text)
		if w > budget {
			return false, budget
		}
		return true, budget - w
	case kindLine:
		if budget < 1 {
			return false, budget
		}
		return true, budget - 1
	case kindHardLine, kindBlankLine:
		return false, budget
	case kindConcat:
		for _, c := range doc.docs {
			ok, rest := measureFlat(c, budget, depth+1)
			if !ok {
				return false, budget
			}
			budget = rest
		}
		return true, budget
	case kindNest:
		return measureFlat(doc.inner, budget, depth+1)
	case kindGroup:
		return measureFlat(doc.inner, budget, depth+1)
	case kindIfBreak:
		// measuring as if the whole tree renders flat: take the flat branch
		return measureFlat(doc.flat, budget, depth+1)
	default:
		return false, budget
	}
}

// Describe renders doc's structure as indented HTML-like markup, without
// running the measure/layout algorithm. It is useful for understanding why
// a Group broke.
func Describe(doc *Doc) string {
	var sb strings.Builder
	describe(&sb, doc, 0)
	return sb.String()
}

func describe(sb *strings.Builder, doc *Doc, indent int) {
	pad := strings.Repeat("  ", indent)
	switch doc.kind {
	case kindNil:
		fmt.Fprintf(sb, "%s<nil/>\n", pad)
	case kindText:
		fmt.Fprintf(sb, "%s<text content=%q/>\n", pad, doc.text)
	case kindLine:
		fmt.Fprintf(sb, "%s<line/>\n", pad)
	case kindHardLine:
		fmt.Fprintf(sb, "%s<hardline/>\n", pad)
	case kindBlankLine:
		fmt.Fprintf(sb, "%s<blankline/>\n", pad)
	case kindConcat:
		fmt.Fprintf(sb, "%s<concat>\n", pad)
		for _, c := range doc.docs {
			describe(sb, c, indent+1)
		}
		fmt.Fprintf(sb, "%s</concat>\n", pad)
	case kindGroup:
		fmt.Fprintf(sb, "%s<group>\n", pad)
		describe(sb, doc.inner, indent+1)
		fmt.Fprintf(sb, "%s</group>\n", pad)
	case kindNest:
		fmt.Fprintf(sb, "%s<nest columns=%d>\n", pad, doc.n)
		describe(sb, doc.inner, indent+1)
		fmt.Fprintf(sb, "%s</nest>\n", pad)
	case kindIfBreak:
		fmt.Fprintf(sb, "%s<ifbreak>\n", pad)
		fmt.Fprintf(sb, "%s  <broken>\n", pad)
		describe(sb, doc.broken, indent+2)
		fmt.Fprintf(sb, "%s  </broken>\n", pad)
		fmt.Fprintf(sb, "%s  <flat>\n", pad)
		describe(sb, doc.flat, indent+2)
		fmt.Fprintf(sb, "%s  </flat>\n", pad)
		fmt.Fprintf(sb, "%s</ifbreak>\n", pad)
	}
}

// GoString renders doc as a runnable Go program reproducing it with this
// package's constructors, useful for minimizing a failing layout.
func GoString(doc *Doc) string {
	var sb strings.Builder
	sb.WriteString("package main\n\nimport (\n\t\"os\"\n\n\t\"github.com/teleivo/santafmt/internal/layout\"\n)\n\nfunc main() {\n\td := ")
	goString(&sb, doc, 1)
	sb.WriteString("\n\tlayout.Render(os.Stdout, d, layout.Default)\n}\n")
	return sb.String()
}

func goString(sb *strings.Builder, doc *Doc, indent int) {
	pad := strings.Repeat("\t", indent)
	switch doc.kind {
	case kindNil:
		sb.WriteString("layout.Nil")
	case kindText:
		fmt.Fprintf(sb, "layout.Text(%q)", doc.text)
	case kindLine:
		sb.WriteString("layout.Line()")
	case kindHardLine:
		sb.WriteString("layout.HardLine()")
	case kindBlankLine:
		sb.WriteString("layout.BlankLine()")
	case kindConcat:
		sb.WriteString("layout.Concat(\n")
		for _, c := range doc.docs {
			sb.WriteString(pad)
			goString(sb, c, indent+1)
			sb.WriteString(",\n")
		}
		fmt.Fprintf(sb, "%s)", strings.Repeat("\t", indent-1))
	case kindGroup:
		sb.WriteString("layout.Group(")
		goString(sb, doc.inner, indent)
		sb.WriteString(")")
	case kindNest:
		fmt.Fprintf(sb, "layout.Nest(%d, ", doc.n)
		goString(sb, doc.inner, indent)
		sb.WriteString(")")
	case kindIfBreak:
		sb.WriteString("layout.IfBreak(")
		goString(sb, doc.broken, indent)
		sb.WriteString(", ")
		goString(sb, doc.flat, indent)
		sb.WriteString(")")
	}
}
