// Package printer translates a santa-lang AST into a layout.Doc and renders
// it. The Printer facade driving a recursive doc-construction pass mirrors
// teleivo/dot's printer package in shape, but every layout decision below is
// santa-lang's, not DOT's: operator precedence and parenthesization, pipe
// chain and composition layout, lambda inlining, trailing-closure
// rewriting, dictionary shorthand, and string escaping have no DOT
// equivalent.
package printer

import (
	"strings"

	"github.com/teleivo/santafmt/ast"
	"github.com/teleivo/santafmt/internal/assert"
	"github.com/teleivo/santafmt/internal/layout"
)

// operator precedence levels, low to high, mirroring parser.go's table.
// Atoms (anything that is never parenthesized by the precedence rule, e.g.
// calls, literals, index expressions) use precAtom, a level above every
// real operator so the "< precedence" / "<= precedence" comparisons never
// trigger for them.
const (
	precAndOr = iota
	precEquals
	precLessGreater
	precComposition
	precSum
	precProduct
	precAtom = 1 << 20
)

func operatorPrecedence(op string) int {
	switch op {
	case "&&", "||":
		return precAndOr
	case "==", "!=":
		return precEquals
	case "<", "<=", ">", ">=":
		return precLessGreater
	case "+", "-":
		return precSum
	default: // "*", "/", "%", and backtick-named function calls
		return precProduct
	}
}

// exprPrecedence reports the precedence level an expression prints at for
// the purpose of deciding whether it needs parentheses as an operand of an
// enclosing infix expression.
func exprPrecedence(e ast.Expr) int {
	switch v := e.(type) {
	case *ast.InfixExpr:
		return operatorPrecedence(v.Operator)
	case *ast.FunctionThread, *ast.FunctionComposition, *ast.RangeExpr:
		return precComposition
	default:
		return precAtom
	}
}

// Build translates a parsed program into a Doc, joining top-level
// statements with an always-blank separator and a single trailing HardLine.
func Build(prog *ast.Program) *layout.Doc {
	docs := buildStatements(prog.Statements)
	if len(docs) == 0 {
		return layout.Nil
	}

	var parts []*layout.Doc
	for i, d := range docs {
		if i > 0 {
			parts = append(parts, layout.HardLine(), layout.HardLine())
		}
		parts = append(parts, d)
	}
	parts = append(parts, layout.HardLine())
	return layout.Concat(parts...)
}

// buildStatements builds one Doc per statement, attaches trailing comments,
// and inserts the implicit-return disambiguating semicolon before the
// comment is attached.
func buildStatements(stmts []ast.Stmt) []*layout.Doc {
	core := make([]*layout.Doc, len(stmts))
	for i, s := range stmts {
		core[i] = buildStmtCore(s)
	}
	injectImplicitReturnSemicolon(stmts, core)

	docs := make([]*layout.Doc, len(stmts))
	for i, s := range stmts {
		d := core[i]
		if tc := stmtTrailingComment(s); tc != nil {
			d = layout.Concat(d, layout.Text(" // "+tc.Text))
		}
		docs[i] = d
	}
	return docs
}

// injectImplicitReturnSemicolon appends ";" to the last non-comment
// statement preceding a block's implicit-return expression, so the
// implicit-return value can never be misread as a continuation of the
// previous statement.
func injectImplicitReturnSemicolon(stmts []ast.Stmt, docs []*layout.Doc) {
	if len(stmts) == 0 {
		return
	}
	last := stmts[len(stmts)-1]
	es, ok := last.(*ast.ExpressionStmt)
	if !ok {
		return
	}
	switch es.Value.(type) {
	case *ast.LetExpr, *ast.AssignExpr:
		return
	}

	idx := len(stmts) - 2
	for idx >= 0 {
		if _, isComment := stmts[idx].(*ast.CommentStmt); !isComment {
			break
		}
		idx--
	}
	if idx >= 0 {
		docs[idx] = layout.Concat(docs[idx], layout.Text(";"))
	}
}

func stmtPrecededByBlankLine(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.ReturnStmt:
		return v.PrecededByBlankLine
	case *ast.BreakStmt:
		return v.PrecededByBlankLine
	case *ast.CommentStmt:
		return v.PrecededByBlankLine
	case *ast.ExpressionStmt:
		return v.PrecededByBlankLine
	case *ast.SectionStmt:
		return v.PrecededByBlankLine
	}
	return false
}

func stmtTrailingComment(s ast.Stmt) *ast.Comment {
	switch v := s.(type) {
	case *ast.ReturnStmt:
		return v.TrailingComment
	case *ast.BreakStmt:
		return v.TrailingComment
	case *ast.CommentStmt:
		return v.TrailingComment
	case *ast.ExpressionStmt:
		return v.TrailingComment
	case *ast.SectionStmt:
		return v.TrailingComment
	}
	return nil
}

func buildStmtCore(s ast.Stmt) *layout.Doc {
	switch v := s.(type) {
	case *ast.CommentStmt:
		return layout.Text("// " + v.Comment.Text)
	case *ast.ReturnStmt:
		if v.Value == nil {
			return layout.Text("return")
		}
		return layout.Concat(layout.Text("return "), buildExpr(v.Value))
	case *ast.BreakStmt:
		if v.Value == nil {
			return layout.Text("break")
		}
		return layout.Concat(layout.Text("break "), buildExpr(v.Value))
	case *ast.ExpressionStmt:
		return buildExpr(v.Value)
	case *ast.SectionStmt:
		return buildSection(v)
	default:
		return layout.Nil
	}
}

// buildBlockBraced renders a block's statements between hard-lined, nested
// braces; used wherever a body is forced multi-line (part_one/part_two,
// multi-statement lambdas, the multiline if/match/lambda candidates).
func buildBlockBraced(block *ast.Block) *layout.Doc {
	if len(block.Statements) == 0 {
		return layout.Text("{}")
	}
	docs := buildStatements(block.Statements)
	joined := joinBlockStatements(block.Statements, docs)
	return layout.Concat(
		layout.Text("{"),
		layout.Nest(layout.IndentSize, layout.Concat(layout.HardLine(), joined)),
		layout.HardLine(),
		layout.Text("}"),
	)
}

// joinBlockStatements joins statement docs with one HardLine, except where a
// blank separator (BlankLine · HardLine) is required: the source had a
// blank line before the statement, or the statement is the block's
// implicit exit via a multiline return/break.
func joinBlockStatements(stmts []ast.Stmt, docs []*layout.Doc) *layout.Doc {
	var parts []*layout.Doc
	for i, d := range docs {
		if i > 0 {
			if needsBlankBefore(stmts, i) {
				parts = append(parts, layout.BlankLine(), layout.HardLine())
			} else {
				parts = append(parts, layout.HardLine())
			}
		}
		parts = append(parts, d)
	}
	return layout.Concat(parts...)
}

func needsBlankBefore(stmts []ast.Stmt, i int) bool {
	s := stmts[i]
	if stmtPrecededByBlankLine(s) {
		return true
	}
	if i == len(stmts)-1 {
		switch v := s.(type) {
		case *ast.ReturnStmt:
			return v.Value != nil && isMultilineExpression(v.Value)
		case *ast.BreakStmt:
			return v.Value != nil && isMultilineExpression(v.Value)
		}
	}
	return false
}

// isMultilineExpression reports whether an expression counts as multi-line
// for blank-line separation: a pipe chain of two or more steps (always
// broken), a composition chain of two or more functions (broken only when it
// does not fit), a match
// expression, or a multi-statement lambda.
func isMultilineExpression(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.FunctionThread:
		return len(v.Functions) >= 2
	case *ast.FunctionComposition:
		return len(v.Functions) >= 2
	case *ast.MatchExpr:
		return true
	case *ast.FunctionLiteral:
		return v.IsBlockBody()
	}
	return false
}

// containsBlockLambda reports whether e transitively contains a
// multi-statement lambda. It is used to veto inlining of if/match/section
// bodies that would otherwise hide a block lambda's braces on the same
// line as other content.
func containsBlockLambda(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.FunctionLiteral:
		return v.IsBlockBody()
	case *ast.CallExpr:
		if containsBlockLambda(v.Function) {
			return true
		}
		for _, a := range v.Arguments {
			if containsBlockLambda(a) {
				return true
			}
		}
	case *ast.InfixExpr:
		return containsBlockLambda(v.Left) || containsBlockLambda(v.Right)
	case *ast.PrefixExpr:
		return containsBlockLambda(v.Right)
	case *ast.ListLiteral:
		for _, el := range v.Elements {
			if containsBlockLambda(el) {
				return true
			}
		}
	case *ast.SetLiteral:
		for _, el := range v.Elements {
			if containsBlockLambda(el) {
				return true
			}
		}
	case *ast.DictLiteral:
		for _, entry := range v.Entries {
			if containsBlockLambda(entry.Key) || containsBlockLambda(entry.Value) {
				return true
			}
		}
	case *ast.IndexExpr:
		return containsBlockLambda(v.Left) || containsBlockLambda(v.Index)
	case *ast.FunctionThread:
		if containsBlockLambda(v.Initial) {
			return true
		}
		for _, f := range v.Functions {
			if containsBlockLambda(f) {
				return true
			}
		}
	case *ast.FunctionComposition:
		for _, f := range v.Functions {
			if containsBlockLambda(f) {
				return true
			}
		}
	case *ast.RangeExpr:
		if v.To != nil && containsBlockLambda(v.To) {
			return true
		}
		return containsBlockLambda(v.From)
	case *ast.SpreadExpr:
		return containsBlockLambda(v.Value)
	case *ast.LetExpr:
		return containsBlockLambda(v.Value)
	case *ast.AssignExpr:
		return containsBlockLambda(v.Target) || containsBlockLambda(v.Value)
	}
	return false
}

// isSimpleBody reports whether a block is a single expression suitable for
// inline rendering: exactly one statement and no nested block lambda.
func isSimpleBody(block *ast.Block) bool {
	return block.IsSingleExpression() && !containsBlockLambda(singleExprOf(block))
}

func singleExprOf(block *ast.Block) ast.Expr {
	return block.Statements[0].(*ast.ExpressionStmt).Value
}

func buildExpr(e ast.Expr) *layout.Doc {
	switch v := e.(type) {
	case *ast.Identifier:
		return layout.Text(v.Name)
	case *ast.RestIdentifier:
		return layout.Concat(layout.Text(".."), layout.Text(v.Name))
	case *ast.Placeholder:
		return layout.Text("_")
	case *ast.IntegerLiteral:
		return layout.Text(v.Literal)
	case *ast.DecimalLiteral:
		return layout.Text(v.Literal)
	case *ast.StringLiteral:
		return layout.Text(escapeString(v.Value))
	case *ast.Boolean:
		if v.Value {
			return layout.Text("true")
		}
		return layout.Text("false")
	case *ast.NilLiteral:
		return layout.Text("nil")
	case *ast.OperatorRef:
		return layout.Concat(layout.Text("("), layout.Text(v.Operator), layout.Text(")"))
	case *ast.ListLiteral:
		return layout.Bracketed(layout.Text("["), buildExprList(v.Elements), layout.Text("]"), false)
	case *ast.SetLiteral:
		return layout.Bracketed(layout.Text("{"), buildExprList(v.Elements), layout.Text("}"), false)
	case *ast.DictLiteral:
		return layout.Bracketed(layout.Text("#{"), buildDictEntries(v.Entries), layout.Text("}"), false)
	case *ast.RangeExpr:
		return buildRangeExpr(v)
	case *ast.SpreadExpr:
		return layout.Concat(layout.Text(".."), buildExpr(v.Value))
	case *ast.IndexExpr:
		return layout.Concat(buildExpr(v.Left), layout.Text("["), buildExpr(v.Index), layout.Text("]"))
	case *ast.PrefixExpr:
		return buildPrefixExpr(v)
	case *ast.InfixExpr:
		return buildInfixExpr(v)
	case *ast.FunctionLiteral:
		return buildLambda(v)
	case *ast.CallExpr:
		return buildCallExpr(v)
	case *ast.IfExpr:
		return buildIfExpr(v)
	case *ast.MatchExpr:
		return buildMatchExpr(v)
	case *ast.FunctionThread:
		return buildFunctionThread(v)
	case *ast.FunctionComposition:
		return buildFunctionComposition(v)
	case *ast.LetExpr:
		return buildLetExpr(v)
	case *ast.AssignExpr:
		return layout.Concat(buildExpr(v.Target), layout.Text(" = "), buildExpr(v.Value))
	default:
		assert.That(false, "buildExpr: unhandled expression type %T", e)
		return layout.Nil
	}
}

func buildExprList(exprs []ast.Expr) []*layout.Doc {
	docs := make([]*layout.Doc, len(exprs))
	for i, e := range exprs {
		docs[i] = buildExpr(e)
	}
	return docs
}

// buildDictEntries re-derives the "#{ident}" shorthand whenever an entry's
// key string equals its value identifier's name, the inverse of the
// rewrite parser.go's parseDictEntry applies at parse time.
func buildDictEntries(entries []ast.DictEntry) []*layout.Doc {
	docs := make([]*layout.Doc, len(entries))
	for i, entry := range entries {
		docs[i] = buildDictEntry(entry)
	}
	return docs
}

func buildDictEntry(entry ast.DictEntry) *layout.Doc {
	if sl, ok := entry.Key.(*ast.StringLiteral); ok {
		if id, ok := entry.Value.(*ast.Identifier); ok && id.Name == sl.Value {
			return layout.Text(sl.Value)
		}
	}
	return layout.Concat(buildExpr(entry.Key), layout.Text(": "), buildExpr(entry.Value))
}

func buildRangeExpr(v *ast.RangeExpr) *layout.Doc {
	op := ".."
	if v.Inclusive {
		op = "..="
	}
	from := buildOperand(v.From, exprPrecedence(v.From) < precComposition)
	if v.To == nil {
		return layout.Concat(from, layout.Text(".."))
	}
	to := buildOperand(v.To, exprPrecedence(v.To) < precComposition)
	return layout.Concat(from, layout.Text(op), to)
}

// buildPrefixExpr wraps the operand in parentheses when it is an infix,
// pipe chain or composition chain, so "!(a && b)" is not printed as
// "!a && b", which would read back as "(!a) && b".
func buildPrefixExpr(v *ast.PrefixExpr) *layout.Doc {
	right := buildExpr(v.Right)
	switch v.Right.(type) {
	case *ast.InfixExpr, *ast.FunctionThread, *ast.FunctionComposition:
		right = layout.Concat(layout.Text("("), right, layout.Text(")"))
	}
	return layout.Concat(layout.Text(v.Operator), right)
}

// buildInfixExpr parenthesizes operands by precedence: the left operand
// only when its head precedence is strictly lower than the current
// operator's, the right operand already when it is lower-or-equal, so
// right-grouping survives printing (e.g. "a - (b - c)").
func buildInfixExpr(v *ast.InfixExpr) *layout.Doc {
	cur := operatorPrecedence(v.Operator)
	left := buildOperand(v.Left, exprPrecedence(v.Left) < cur)
	right := buildOperand(v.Right, exprPrecedence(v.Right) <= cur)

	op := v.Operator
	if v.Backtick {
		op = "`" + v.Operator + "`"
	}
	return layout.Group(layout.Concat(left, layout.Text(" "), layout.Text(op), layout.Text(" "), right))
}

func buildOperand(e ast.Expr, needsParen bool) *layout.Doc {
	d := buildExpr(e)
	if needsParen {
		return layout.Concat(layout.Text("("), d, layout.Text(")"))
	}
	return d
}

// buildLambda renders "|params| body", inlining the body unless it is a
// set/dict literal, a pipe/composition chain, or a multi-statement block.
func buildLambda(f *ast.FunctionLiteral) *layout.Doc {
	header := lambdaHeader(f)
	if canInlineLambdaBody(f) {
		return layout.Concat(header, layout.Text(" "), buildExpr(singleExprOf(f.Body)))
	}
	return layout.Concat(header, layout.Text(" "), buildBlockBraced(f.Body))
}

// buildLambdaBlockForm always renders the body braced, used for lambdas
// that appear in a forced trailing-closure or non-last pipe-chain position.
func buildLambdaBlockForm(f *ast.FunctionLiteral) *layout.Doc {
	return layout.Concat(lambdaHeader(f), layout.Text(" "), buildBlockBraced(f.Body))
}

func lambdaHeader(f *ast.FunctionLiteral) *layout.Doc {
	params := buildPatternList(f.Parameters)
	return layout.Concat(layout.Text("|"), layout.Join(params, layout.Text(", ")), layout.Text("|"))
}

func canInlineLambdaBody(f *ast.FunctionLiteral) bool {
	if !f.Body.IsSingleExpression() {
		return false
	}
	switch singleExprOf(f.Body).(type) {
	case *ast.SetLiteral, *ast.DictLiteral, *ast.FunctionThread, *ast.FunctionComposition:
		return false
	}
	return true
}

// buildCallExpr renders a call, deferring to buildCallWithTrailingClosure
// whenever the last argument is a lambda literal: the call-site sugar
// "name |x| body" round-trips through here.
func buildCallExpr(c *ast.CallExpr) *layout.Doc {
	fnDoc := buildExpr(c.Function)
	n := len(c.Arguments)
	if n > 0 {
		if lambda, ok := c.Arguments[n-1].(*ast.FunctionLiteral); ok {
			return buildCallWithTrailingClosure(fnDoc, c.Arguments[:n-1], lambda)
		}
	}
	return layout.Concat(fnDoc, layout.Bracketed(layout.Text("("), buildExprList(c.Arguments), layout.Text(")"), false))
}

// buildCallWithTrailingClosure chooses between "f(args, |x| expr)" and
// "f(args) |x| { ... }" via group(if_break(trailing, inline)): the trailing
// block form wins whenever the inline candidate does not fit, or
// unconditionally when the lambda has more than one statement (its braces
// must not share a line with anything else).
func buildCallWithTrailingClosure(fnDoc *layout.Doc, otherArgs []ast.Expr, lambda *ast.FunctionLiteral) *layout.Doc {
	inlineArgs := append(buildExprList(otherArgs), buildLambda(lambda))
	inline := layout.Concat(fnDoc, layout.Bracketed(layout.Text("("), inlineArgs, layout.Text(")"), false))

	lambdaBlock := buildLambdaBlockForm(lambda)
	var trailing *layout.Doc
	if len(otherArgs) == 0 {
		trailing = layout.Concat(fnDoc, layout.Text(" "), lambdaBlock)
	} else {
		trailing = layout.Concat(fnDoc, layout.Bracketed(layout.Text("("), buildExprList(otherArgs), layout.Text(")"), false), layout.Text(" "), lambdaBlock)
	}

	if !lambda.Body.IsSingleExpression() {
		return trailing
	}
	return layout.Group(layout.IfBreak(trailing, inline))
}

// buildFunctionThread renders a pipe chain. A single pipe stays inline
// when it fits; two or more always break, one "|> fn" per line, non-last
// lambda elements forced to block form.
func buildFunctionThread(t *ast.FunctionThread) *layout.Doc {
	initial := buildOperand(t.Initial, exprPrecedence(t.Initial) < precComposition)
	n := len(t.Functions)
	if n == 1 {
		return layout.Group(layout.Concat(initial, layout.Nest(layout.IndentSize, layout.Concat(layout.Line(), layout.Text("|> "), buildExpr(t.Functions[0])))))
	}

	var cont []*layout.Doc
	for i, fn := range t.Functions {
		var fnDoc *layout.Doc
		if lam, ok := fn.(*ast.FunctionLiteral); ok && i < n-1 {
			fnDoc = buildLambdaBlockForm(lam)
		} else {
			fnDoc = buildExpr(fn)
		}
		cont = append(cont, layout.HardLine(), layout.Text("|> "), fnDoc)
	}
	return layout.Concat(initial, layout.Nest(layout.IndentSize, layout.Concat(cont...)))
}

// buildFunctionComposition renders "f1 >> f2 >> ..." via
// group(f1 · nest(2, (line · ">> " · f2) · ...)).
func buildFunctionComposition(c *ast.FunctionComposition) *layout.Doc {
	fns := make([]*layout.Doc, len(c.Functions))
	for i, f := range c.Functions {
		fns[i] = buildOperand(f, exprPrecedence(f) < precComposition)
	}
	var cont []*layout.Doc
	for _, f := range fns[1:] {
		cont = append(cont, layout.Line(), layout.Text(">> "), f)
	}
	return layout.Group(layout.Concat(fns[0], layout.Nest(layout.IndentSize, layout.Concat(cont...))))
}

func buildLetExpr(v *ast.LetExpr) *layout.Doc {
	kw := "let "
	if v.Mutable {
		kw = "let mut "
	}
	return layout.Concat(layout.Text(kw), buildPattern(v.Target), layout.Text(" = "), buildExpr(v.Value))
}

// buildIfExpr renders "if cond { ... } [else ...]" via
// group(if_break(multiline, inline)). When a branch contains a block
// lambda, its inline candidate itself contains a HardLine, so the group's
// flat measurement fails and the multiline form wins automatically.
func buildIfExpr(e *ast.IfExpr) *layout.Doc {
	cond := buildExpr(e.Condition)
	inline := layout.Concat(layout.Text("if "), cond, layout.Text(" "), ifBranchInline(e.Consequence))
	multiline := layout.Concat(layout.Text("if "), cond, layout.Text(" "), buildBlockBraced(e.Consequence))

	if e.Alternative != nil {
		if nested, ok := elseIfExpr(e.Alternative); ok {
			nestedDoc := buildIfExpr(nested)
			inline = layout.Concat(inline, layout.Text(" else "), nestedDoc)
			multiline = layout.Concat(multiline, layout.Text(" else "), nestedDoc)
		} else {
			inline = layout.Concat(inline, layout.Text(" else "), ifBranchInline(e.Alternative))
			multiline = layout.Concat(multiline, layout.Text(" else "), buildBlockBraced(e.Alternative))
		}
	}

	return layout.Group(layout.IfBreak(multiline, inline))
}

func ifBranchInline(block *ast.Block) *layout.Doc {
	if isSimpleBody(block) {
		return layout.Concat(layout.Text("{ "), buildExpr(singleExprOf(block)), layout.Text(" }"))
	}
	return buildBlockBraced(block)
}

// elseIfExpr reports whether an Alternative block is the synthetic
// single-statement wrapper parser.go's parseIfExpr builds for "else if"
// chaining, returning the nested IfExpr it wraps.
func elseIfExpr(block *ast.Block) (*ast.IfExpr, bool) {
	if block.LBrace != nil || len(block.Statements) != 1 {
		return nil, false
	}
	es, ok := block.Statements[0].(*ast.ExpressionStmt)
	if !ok {
		return nil, false
	}
	nested, ok := es.Value.(*ast.IfExpr)
	return nested, ok
}

func buildMatchExpr(m *ast.MatchExpr) *layout.Doc {
	var caseDocs []*layout.Doc
	for _, c := range m.Cases {
		caseDocs = append(caseDocs, buildMatchCase(c))
	}
	joined := layout.Join(caseDocs, layout.HardLine())
	return layout.Concat(
		layout.Text("match "), buildExpr(m.Subject), layout.Text(" {"),
		layout.Nest(layout.IndentSize, layout.Concat(layout.HardLine(), joined)),
		layout.HardLine(), layout.Text("}"),
	)
}

func buildMatchCase(c ast.MatchCase) *layout.Doc {
	pat := buildPattern(c.Pattern)
	guard := layout.Nil
	if c.Guard != nil {
		guard = layout.Concat(layout.Text(" if "), buildExpr(c.Guard))
	}

	var body *layout.Doc
	if isSimpleBody(c.Body) {
		body = layout.Concat(layout.Text("{ "), buildExpr(singleExprOf(c.Body)), layout.Text(" }"))
	} else {
		body = buildBlockBraced(c.Body)
	}

	d := layout.Concat(pat, guard, layout.Text(" "), body)
	if c.TrailingComment != nil {
		d = layout.Concat(d, layout.Text(" // "+c.TrailingComment.Text))
	}
	return d
}

// buildSection renders a top-level `name: body` block, with @attributes
// each on their own line above it. part_one/part_two always brace their
// body; other sections inline a single simple expression.
func buildSection(s *ast.SectionStmt) *layout.Doc {
	var parts []*layout.Doc
	for _, a := range s.Attributes {
		parts = append(parts, layout.Text("@"+a), layout.HardLine())
	}

	var body *layout.Doc
	if s.IsPuzzlePart() || !isSimpleBody(s.Body) {
		body = buildBlockBraced(s.Body)
	} else {
		body = buildExpr(singleExprOf(s.Body))
	}

	parts = append(parts, layout.Text(s.Name+": "), body)
	return layout.Concat(parts...)
}

func buildPattern(p ast.Pattern) *layout.Doc {
	switch v := p.(type) {
	case *ast.Identifier:
		return layout.Text(v.Name)
	case *ast.Placeholder:
		return layout.Text("_")
	case *ast.RestIdentifier:
		return layout.Concat(layout.Text(".."), layout.Text(v.Name))
	case *ast.ListPattern:
		return buildListPattern(v)
	case *ast.DictPattern:
		return buildDictPattern(v)
	default:
		assert.That(false, "buildPattern: unhandled pattern type %T", p)
		return layout.Nil
	}
}

func buildPatternList(pats []ast.Pattern) []*layout.Doc {
	docs := make([]*layout.Doc, len(pats))
	for i, p := range pats {
		docs[i] = buildPattern(p)
	}
	return docs
}

// buildListPattern prints destructuring patterns inline without the
// bracketed break logic, since binding-target lists are assumed short.
func buildListPattern(v *ast.ListPattern) *layout.Doc {
	elems := buildPatternList(v.Elements)
	if v.Rest != nil {
		elems = append(elems, buildPattern(v.Rest))
	}
	return layout.Concat(layout.Text("["), layout.Join(elems, layout.Text(", ")), layout.Text("]"))
}

func buildDictPattern(v *ast.DictPattern) *layout.Doc {
	var elems []*layout.Doc
	for _, entry := range v.Entries {
		elems = append(elems, buildDictPatternEntry(entry))
	}
	return layout.Concat(layout.Text("#{"), layout.Join(elems, layout.Text(", ")), layout.Text("}"))
}

func buildDictPatternEntry(entry ast.DictPatternEntry) *layout.Doc {
	if id, ok := entry.Value.(*ast.Identifier); ok && id.Name == entry.Key {
		return layout.Text(entry.Key)
	}
	return layout.Concat(layout.Text(entry.Key), layout.Text(": "), buildPattern(entry.Value))
}

// escapeString quotes s for output. A string with more than 3 interior
// newlines, or longer than 50 bytes, keeps its newlines literal; otherwise
// newlines are escaped as "\n". Backslash, double quote, tab, carriage
// return, backspace and form feed are always escaped; every other rune is
// written as is. The quoted result is always a single Text node, never split
// across Doc nodes.
func escapeString(s string) string {
	literal := strings.Count(s, "\n") > 3 || len(s) > 50

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			if literal {
				b.WriteByte('\n')
			} else {
				b.WriteString(`\n`)
			}
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
