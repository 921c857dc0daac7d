// Package santafmt implements a deterministic, idempotent, comment-preserving
// formatter for santa-lang, the small functional language used to write
// Advent of Code style puzzle solutions.
//
// The pipeline is Lexer -> Parser -> AST -> Builder -> Doc -> Printer. This
// file and lexer.go provide the two external collaborators (Lexer, Parser);
// santafmt.go exposes the library API (Format, IsFormatted) built on top of
// them and the printer package.
package santafmt

import (
	"fmt"
	"io"

	"github.com/teleivo/santafmt/ast"
	"github.com/teleivo/santafmt/token"
)

// Error represents a parse error in santa-lang source code. Pos points at
// the offending token and Msg describes the error condition.
type Error struct {
	Pos token.Position
	Msg string
}

// Error formats the error as "line:column: message".
func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// precedence levels, low to high.
const (
	lowest int = iota
	andOr
	equals
	lessGreater
	composition
	sum
	product
	prefix
	call
)

var precedences = map[token.Kind]int{
	token.AND:           andOr,
	token.OR:            andOr,
	token.EQ:            equals,
	token.NOT_EQ:        equals,
	token.LT:            lessGreater,
	token.LT_EQ:         lessGreater,
	token.GT:            lessGreater,
	token.GT_EQ:         lessGreater,
	token.PIPE:          composition,
	token.COMPOSE:       composition,
	token.DOT_DOT:       composition,
	token.DOT_DOT_EQUAL: composition,
	token.PLUS:          sum,
	token.MINUS:         sum,
	token.ASTERISK:      product,
	token.SLASH:         product,
	token.PERCENT:       product,
	token.BACKTICK:      product,
	token.LPAREN:        call,
	token.LBRACKET:      call,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser parses santa-lang source code into an abstract syntax tree.
//
// Parser is error-resilient: it continues parsing after encountering a
// syntax error, collecting every error for later retrieval via Errors. It
// uses two tokens of lookahead (curToken/peekToken), in the style of the
// teleivo/dot Parser this package is grounded on.
type Parser struct {
	lexer     *Lexer
	curToken  token.Token
	peekToken token.Token
	errors    []Error

	prefixParseFns map[token.Kind]prefixParseFn
	infixParseFns  map[token.Kind]infixParseFn
}

// NewParser creates a parser that reads santa-lang source from r.
func NewParser(r io.Reader) (*Parser, error) {
	lx, err := NewLexer(r)
	if err != nil {
		return nil, err
	}

	p := &Parser{lexer: lx}
	p.prefixParseFns = map[token.Kind]prefixParseFn{
		token.IDENT:       p.parseIdentifier,
		token.INTEGER:     p.parseIntegerLiteral,
		token.DECIMAL:     p.parseDecimalLiteral,
		token.STRING:      p.parseStringLiteral,
		token.TRUE:        p.parseBoolean,
		token.FALSE:       p.parseBoolean,
		token.NIL:         p.parseNilLiteral,
		token.PLACEHOLDER: p.parsePlaceholder,
		token.MINUS:       p.parsePrefixExpr,
		token.BANG:        p.parsePrefixExpr,
		token.LPAREN:      p.parseGroupedExpr,
		token.LBRACKET:    p.parseListLiteral,
		token.LBRACE:      p.parseSetLiteral,
		token.HASH_BRACE:  p.parseDictLiteral,
		token.PIPE_BAR:    p.parseFunctionLiteral,
		token.IF:          p.parseIfExpr,
		token.MATCH:       p.parseMatchExpr,
		token.LET:         p.parseLetExpr,
	}
	p.infixParseFns = map[token.Kind]infixParseFn{
		token.PLUS:          p.parseInfixExpr,
		token.MINUS:         p.parseInfixExpr,
		token.ASTERISK:      p.parseInfixExpr,
		token.SLASH:         p.parseInfixExpr,
		token.PERCENT:       p.parseInfixExpr,
		token.BACKTICK:      p.parseInfixExpr,
		token.EQ:            p.parseInfixExpr,
		token.NOT_EQ:        p.parseInfixExpr,
		token.LT:            p.parseInfixExpr,
		token.LT_EQ:         p.parseInfixExpr,
		token.GT:            p.parseInfixExpr,
		token.GT_EQ:         p.parseInfixExpr,
		token.AND:           p.parseInfixExpr,
		token.OR:            p.parseInfixExpr,
		token.PIPE:          p.parseFunctionThread,
		token.COMPOSE:       p.parseFunctionComposition,
		token.DOT_DOT:       p.parseRangeExpr,
		token.DOT_DOT_EQUAL: p.parseRangeExpr,
		token.LPAREN:        p.parseCallExpr,
		token.LBRACKET:      p.parseIndexExpr,
	}

	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return p, nil
}

// Errors returns every parse error collected during parsing.
func (p *Parser) Errors() []Error {
	return p.errors
}

func (p *Parser) nextToken() error {
	tok, err := p.lexer.Next()
	if err != nil {
		return err
	}
	p.curToken = p.peekToken
	p.peekToken = tok
	return nil
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Kind]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Kind]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) expectPeek(k token.Kind) bool {
	if p.peekToken.Kind != k {
		p.errorf(p.peekToken.Start, "expected next token to be %s, got %s instead", k, p.peekToken.Kind)
		return false
	}
	p.nextToken()
	return true
}

// Parse parses the santa-lang source and returns the resulting AST. Parse
// always returns a program, even when syntax errors are encountered; the
// errors are collected and retrievable via Errors. The returned error is
// non-nil only for terminal (I/O) failures.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.curToken.Kind != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return prog, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if err := p.nextToken(); err != nil {
			return prog, err
		}
	}

	return prog, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	blank := p.curToken.PrecededByBlankLine

	switch p.curToken.Kind {
	case token.COMMENT:
		return p.withBlank(&ast.CommentStmt{Comment: ast.Comment{Text: p.curToken.Literal, Pos: p.curToken.Start}}, blank), nil
	case token.RETURN:
		return p.parseReturnStmt(blank)
	case token.BREAK:
		return p.parseBreakStmt(blank)
	case token.AT:
		return p.parseSectionStmt(blank)
	default:
		if p.curToken.Kind == token.IDENT && p.peekToken.Kind == token.COLON {
			return p.parseSectionStmtFromName(blank, nil)
		}
		return p.parseExpressionStmt(blank)
	}
}

func (p *Parser) withBlank(s ast.Stmt, blank bool) ast.Stmt {
	switch v := s.(type) {
	case *ast.CommentStmt:
		v.PrecededByBlankLine = blank
		return v
	case *ast.ReturnStmt:
		v.PrecededByBlankLine = blank
		return v
	case *ast.BreakStmt:
		v.PrecededByBlankLine = blank
		return v
	case *ast.ExpressionStmt:
		v.PrecededByBlankLine = blank
		return v
	case *ast.SectionStmt:
		v.PrecededByBlankLine = blank
		return v
	default:
		return s
	}
}

func (p *Parser) parseReturnStmt(blank bool) (ast.Stmt, error) {
	stmt := &ast.ReturnStmt{Keyword: p.curToken.Start}
	stmt.PrecededByBlankLine = blank
	if p.peekToken.Kind != token.SEMICOLON && p.peekToken.Kind != token.RBRACE && p.peekToken.Kind != token.EOF {
		p.nextToken()
		stmt.Value = p.parseExpression(lowest)
	}
	p.consumeTrailingSemicolonAndComment(&stmt.TrailingComment)
	return stmt, nil
}

func (p *Parser) parseBreakStmt(blank bool) (ast.Stmt, error) {
	stmt := &ast.BreakStmt{Keyword: p.curToken.Start}
	stmt.PrecededByBlankLine = blank
	if p.peekToken.Kind != token.SEMICOLON && p.peekToken.Kind != token.RBRACE && p.peekToken.Kind != token.EOF {
		p.nextToken()
		stmt.Value = p.parseExpression(lowest)
	}
	p.consumeTrailingSemicolonAndComment(&stmt.TrailingComment)
	return stmt, nil
}

func (p *Parser) parseExpressionStmt(blank bool) (ast.Stmt, error) {
	stmt := &ast.ExpressionStmt{}
	stmt.PrecededByBlankLine = blank
	target := p.parseExpression(lowest)
	if p.peekToken.Kind == token.ASSIGN {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(lowest)
		stmt.Value = &ast.AssignExpr{Target: target, Value: value}
	} else {
		stmt.Value = target
	}
	p.consumeTrailingSemicolonAndComment(&stmt.TrailingComment)
	return stmt, nil
}

// consumeTrailingSemicolonAndComment advances past an optional SEMICOLON and
// then an optional trailing COMMENT on the same source line, recording the
// comment on the statement for the builder to re-attach after the
// statement's own text.
func (p *Parser) consumeTrailingSemicolonAndComment(trailing **ast.Comment) {
	if p.peekToken.Kind == token.SEMICOLON {
		p.nextToken()
	}
	if p.peekToken.Kind == token.COMMENT && p.peekToken.Start.Line == p.curToken.End.Line {
		p.nextToken()
		*trailing = &ast.Comment{Text: p.curToken.Literal, Pos: p.curToken.Start}
	}
}

func (p *Parser) parseSectionStmt(blank bool) (ast.Stmt, error) {
	var attrs []string
	for p.curToken.Kind == token.AT {
		if !p.expectPeek(token.IDENT) {
			return nil, nil
		}
		attrs = append(attrs, p.curToken.Literal)
		p.nextToken()
	}
	if p.curToken.Kind != token.IDENT {
		p.errorf(p.curToken.Start, "expected a section name after @attributes, got %s instead", p.curToken.Kind)
		return nil, nil
	}
	return p.parseSectionStmtFromName(blank, attrs)
}

func (p *Parser) parseSectionStmtFromName(blank bool, attrs []string) (ast.Stmt, error) {
	name := p.curToken.Literal
	namePos := p.curToken.Start
	if !p.expectPeek(token.COLON) {
		return nil, nil
	}
	p.nextToken()

	body := p.parseBlockOrExpressionBody()

	stmt := &ast.SectionStmt{Name: name, NamePos: namePos, Attributes: attrs, Body: body}
	stmt.PrecededByBlankLine = blank
	p.consumeTrailingSemicolonAndComment(&stmt.TrailingComment)
	return stmt, nil
}

// parseBlockOrExpressionBody parses either a brace-delimited block or a
// single expression, normalizing both into an *ast.Block so the builder
// can use Block.IsSingleExpression uniformly.
func (p *Parser) parseBlockOrExpressionBody() *ast.Block {
	if p.curToken.Kind == token.LBRACE {
		return p.parseBlock()
	}
	expr := p.parseExpression(lowest)
	stmt := &ast.ExpressionStmt{Value: expr}
	return &ast.Block{Statements: []ast.Stmt{stmt}}
}

func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.curToken.Start
	block := &ast.Block{LBrace: &lbrace}

	p.nextToken()
	for p.curToken.Kind != token.RBRACE && p.curToken.Kind != token.EOF {
		stmt, _ := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	rbrace := p.curToken.Start
	block.RBrace = &rbrace
	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefixFn, ok := p.prefixParseFns[p.curToken.Kind]
	if !ok {
		p.errorf(p.curToken.Start, "no prefix parse function for %s found", p.curToken.Kind)
		return nil
	}
	left := prefixFn()

	left = p.maybeRewriteTrailingClosure(left)

	for p.peekToken.Kind != token.SEMICOLON && precedence < p.peekPrecedence() {
		infixFn, ok := p.infixParseFns[p.peekToken.Kind]
		if !ok {
			return left
		}
		p.nextToken()
		left = infixFn(left)
		left = p.maybeRewriteTrailingClosure(left)
	}

	return left
}

// maybeRewriteTrailingClosure implements call-site trailing-closure sugar:
// "name |x| body" is parsed as "name(|x| body)", and "f(args) |x|
// body" appends the lambda as the existing call's last argument. It fires
// after parsing any expression that could be a call target: a bare
// identifier or index expression becomes a new one-argument call; an
// already-parsed call gets the lambda appended to its arguments.
func (p *Parser) maybeRewriteTrailingClosure(left ast.Expr) ast.Expr {
	if p.peekToken.Kind != token.PIPE_BAR {
		return left
	}
	switch v := left.(type) {
	case *ast.Identifier, *ast.IndexExpr:
		p.nextToken()
		lambda := p.parseFunctionLiteral()
		return &ast.CallExpr{Function: left, Arguments: []ast.Expr{lambda}}
	case *ast.CallExpr:
		p.nextToken()
		lambda := p.parseFunctionLiteral()
		v.Arguments = append(v.Arguments, lambda)
		return v
	default:
		return left
	}
}

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Identifier{Name: p.curToken.Literal, Pos: p.curToken.Start}
}

func (p *Parser) parsePlaceholder() ast.Expr {
	return &ast.Placeholder{Pos: p.curToken.Start}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	return &ast.IntegerLiteral{Literal: p.curToken.Literal, Pos: p.curToken.Start}
}

func (p *Parser) parseDecimalLiteral() ast.Expr {
	return &ast.DecimalLiteral{Literal: p.curToken.Literal, Pos: p.curToken.Start}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return &ast.StringLiteral{Value: p.curToken.Literal, Pos: p.curToken.Start}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.Boolean{Value: p.curToken.Kind == token.TRUE, Pos: p.curToken.Start}
}

func (p *Parser) parseNilLiteral() ast.Expr {
	return &ast.NilLiteral{Pos: p.curToken.Start}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	expr := &ast.PrefixExpr{Operator: p.curToken.Kind.String(), OpPos: p.curToken.Start}
	p.nextToken()
	expr.Right = p.parseExpression(prefix)
	return expr
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	expr := &ast.InfixExpr{Left: left, Operator: p.curToken.Kind.String(), Backtick: p.curToken.Kind == token.BACKTICK}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parseGroupedExpr parses a parenthesized expression, or a bare operator
// wrapped in parens (e.g. "(+)") as an OperatorRef usable as a first-class
// function value.
func (p *Parser) parseGroupedExpr() ast.Expr {
	lparen := p.curToken.Start
	if isOperatorToken(p.peekToken.Kind) {
		opTok := p.peekToken
		save := p.peekToken
		p.nextToken()
		if p.peekToken.Kind == token.RPAREN {
			p.nextToken()
			_ = save
			return &ast.OperatorRef{Operator: opTok.Kind.String(), Pos: opTok.Start}
		}
		// not a bare operator value: record an error and resume parsing at
		// the token after the operator. Prefix "-"/"!" are not operator
		// tokens here, so "(-x)" and "(!x)" never reach this branch.
		p.errorf(lparen, "unexpected operator %s inside parentheses", opTok.Kind)
	}

	p.nextToken()
	expr := p.parseExpression(lowest)
	if !p.expectPeek(token.RPAREN) {
		return expr
	}
	return expr
}

func isOperatorToken(k token.Kind) bool {
	switch k {
	case token.PLUS, token.ASTERISK, token.SLASH, token.PERCENT, token.BACKTICK,
		token.EQ, token.NOT_EQ, token.LT, token.LT_EQ, token.GT, token.GT_EQ,
		token.AND, token.OR:
		return true
	}
	return false
}

func (p *Parser) parseListLiteral() ast.Expr {
	lbracket := p.curToken.Start
	elements := p.parseExprList(token.RBRACKET)
	return &ast.ListLiteral{LBracket: lbracket, Elements: elements, RBracket: p.curToken.Start}
}

func (p *Parser) parseSetLiteral() ast.Expr {
	lbrace := p.curToken.Start
	elements := p.parseExprList(token.RBRACE)
	return &ast.SetLiteral{LBrace: lbrace, Elements: elements, RBrace: p.curToken.Start}
}

func (p *Parser) parseExprList(end token.Kind) []ast.Expr {
	var list []ast.Expr
	if p.peekToken.Kind == end {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseListElement(end))
	for p.peekToken.Kind == token.COMMA {
		p.nextToken()
		if p.peekToken.Kind == end { // trailing comma
			break
		}
		p.nextToken()
		list = append(list, p.parseListElement(end))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parseListElement parses one element of a list literal or call argument
// list, special-casing "..expr" as a spread (parseExpression has no prefix
// handler for DOT_DOT and would report an error).
func (p *Parser) parseListElement(end token.Kind) ast.Expr {
	if p.curToken.Kind == token.DOT_DOT {
		dotdot := p.curToken.Start
		p.nextToken()
		value := p.parseExpression(lowest)
		return &ast.SpreadExpr{DotDot: dotdot, Value: value}
	}
	return p.parseExpression(lowest)
}

// parseDictLiteral parses "#{...}" entries, normalizing the shorthand
// "#{ident}" into {Key: "ident", Value: ident} at parse time; the builder
// re-derives the shorthand spelling whenever it prints an entry whose key
// string equals its value identifier's name.
func (p *Parser) parseDictLiteral() ast.Expr {
	hash := p.curToken.Start
	var entries []ast.DictEntry

	if p.peekToken.Kind == token.RBRACE {
		p.nextToken()
		return &ast.DictLiteral{Hash: hash, RBrace: p.curToken.Start}
	}

	p.nextToken()
	entries = append(entries, p.parseDictEntry())
	for p.peekToken.Kind == token.COMMA {
		p.nextToken()
		if p.peekToken.Kind == token.RBRACE {
			break
		}
		p.nextToken()
		entries = append(entries, p.parseDictEntry())
	}
	if !p.expectPeek(token.RBRACE) {
		return &ast.DictLiteral{Hash: hash, Entries: entries}
	}
	return &ast.DictLiteral{Hash: hash, Entries: entries, RBrace: p.curToken.Start}
}

func (p *Parser) parseDictEntry() ast.DictEntry {
	if p.curToken.Kind == token.IDENT && (p.peekToken.Kind == token.COMMA || p.peekToken.Kind == token.RBRACE) {
		name := p.curToken.Literal
		pos := p.curToken.Start
		return ast.DictEntry{
			Key:   &ast.StringLiteral{Value: name, Pos: pos},
			Value: &ast.Identifier{Name: name, Pos: pos},
		}
	}

	key := p.parseExpression(lowest)
	if !p.expectPeek(token.COLON) {
		return ast.DictEntry{Key: key}
	}
	p.nextToken()
	value := p.parseExpression(lowest)
	return ast.DictEntry{Key: key, Value: value}
}

// parseFunctionLiteral parses "|params| body". The body is a block when
// braced, otherwise a single implicit-return expression normalized into a
// one-statement *ast.Block, mirroring parseBlockOrExpressionBody.
func (p *Parser) parseFunctionLiteral() ast.Expr {
	pipe1 := p.curToken.Start
	params := p.parsePatternList(token.PIPE_BAR)
	pipe2 := p.curToken.Start

	p.nextToken()
	body := p.parseBlockOrExpressionBody()

	return &ast.FunctionLiteral{Pipe1: pipe1, Parameters: params, Pipe2: pipe2, Body: body}
}

func (p *Parser) parsePatternList(end token.Kind) []ast.Pattern {
	var list []ast.Pattern
	if p.peekToken.Kind == end {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parsePattern())
	for p.peekToken.Kind == token.COMMA {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parsePattern())
	}
	p.expectPeek(end)
	return list
}

// parsePattern parses a binding target: identifier, placeholder, rest
// identifier, or a list/dict destructuring pattern.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Kind {
	case token.IDENT:
		return &ast.Identifier{Name: p.curToken.Literal, Pos: p.curToken.Start}
	case token.PLACEHOLDER:
		return &ast.Placeholder{Pos: p.curToken.Start}
	case token.DOT_DOT:
		pos := p.curToken.Start
		p.nextToken()
		return &ast.RestIdentifier{Name: p.curToken.Literal, Pos: pos}
	case token.LBRACKET:
		return p.parseListPattern()
	case token.HASH_BRACE:
		return p.parseDictPattern()
	default:
		p.errorf(p.curToken.Start, "unexpected token %s in pattern", p.curToken.Kind)
		return &ast.Identifier{Name: p.curToken.Literal, Pos: p.curToken.Start}
	}
}

func (p *Parser) parseListPattern() ast.Pattern {
	lbracket := p.curToken.Start
	pat := &ast.ListPattern{LBracket: lbracket}

	if p.peekToken.Kind == token.RBRACKET {
		p.nextToken()
		pat.RBracket = p.curToken.Start
		return pat
	}

	p.nextToken()
	for {
		if p.curToken.Kind == token.DOT_DOT {
			pos := p.curToken.Start
			p.nextToken()
			pat.Rest = &ast.RestIdentifier{Name: p.curToken.Literal, Pos: pos}
		} else {
			pat.Elements = append(pat.Elements, p.parsePattern())
		}
		if p.peekToken.Kind != token.COMMA {
			break
		}
		p.nextToken()
		if p.peekToken.Kind == token.RBRACKET {
			break
		}
		p.nextToken()
	}
	p.expectPeek(token.RBRACKET)
	pat.RBracket = p.curToken.Start
	return pat
}

func (p *Parser) parseDictPattern() ast.Pattern {
	hash := p.curToken.Start
	pat := &ast.DictPattern{Hash: hash}

	if p.peekToken.Kind == token.RBRACE {
		p.nextToken()
		pat.RBrace = p.curToken.Start
		return pat
	}

	p.nextToken()
	for {
		pat.Entries = append(pat.Entries, p.parseDictPatternEntry())
		if p.peekToken.Kind != token.COMMA {
			break
		}
		p.nextToken()
		if p.peekToken.Kind == token.RBRACE {
			break
		}
		p.nextToken()
	}
	p.expectPeek(token.RBRACE)
	pat.RBrace = p.curToken.Start
	return pat
}

func (p *Parser) parseDictPatternEntry() ast.DictPatternEntry {
	if p.curToken.Kind == token.IDENT && (p.peekToken.Kind == token.COMMA || p.peekToken.Kind == token.RBRACE) {
		name := p.curToken.Literal
		return ast.DictPatternEntry{Key: name, Value: &ast.Identifier{Name: name, Pos: p.curToken.Start}}
	}
	key := p.curToken.Literal
	p.expectPeek(token.COLON)
	p.nextToken()
	return ast.DictPatternEntry{Key: key, Value: p.parsePattern()}
}

// parseLetExpr parses "let [mut] target = value" as an expression so it can
// be used as a statement (common case) or nested in other constructs (e.g.
// a match guard).
func (p *Parser) parseLetExpr() ast.Expr {
	keyword := p.curToken.Start
	mutable := false
	if p.peekToken.Kind == token.MUT {
		p.nextToken()
		mutable = true
	}
	p.nextToken()
	target := p.parsePattern()
	if !p.expectPeek(token.ASSIGN) {
		return &ast.LetExpr{Keyword: keyword, Mutable: mutable, Target: target}
	}
	p.nextToken()
	value := p.parseExpression(lowest)
	return &ast.LetExpr{Keyword: keyword, Mutable: mutable, Target: target, Value: value}
}

func (p *Parser) parseIfExpr() ast.Expr {
	keyword := p.curToken.Start
	p.nextToken()
	condition := p.parseExpression(lowest)
	if !p.expectPeek(token.LBRACE) {
		return &ast.IfExpr{Keyword: keyword, Condition: condition}
	}
	consequence := p.parseBlock()

	expr := &ast.IfExpr{Keyword: keyword, Condition: condition, Consequence: consequence}

	if p.peekToken.Kind == token.ELSE {
		p.nextToken()
		if p.peekToken.Kind == token.IF {
			p.nextToken()
			nested := p.parseIfExpr()
			expr.Alternative = &ast.Block{Statements: []ast.Stmt{&ast.ExpressionStmt{Value: nested}}}
		} else if p.expectPeek(token.LBRACE) {
			expr.Alternative = p.parseBlock()
		}
	}

	return expr
}

func (p *Parser) parseMatchExpr() ast.Expr {
	keyword := p.curToken.Start
	p.nextToken()
	subject := p.parseExpression(lowest)
	if !p.expectPeek(token.LBRACE) {
		return &ast.MatchExpr{Keyword: keyword, Subject: subject}
	}
	lbrace := p.curToken.Start

	var cases []ast.MatchCase
	p.nextToken()
	for p.curToken.Kind != token.RBRACE && p.curToken.Kind != token.EOF {
		cases = append(cases, p.parseMatchCase())
		p.nextToken()
	}

	return &ast.MatchExpr{Keyword: keyword, Subject: subject, LBrace: lbrace, Cases: cases, RBrace: p.curToken.Start}
}

func (p *Parser) parseMatchCase() ast.MatchCase {
	pattern := p.parsePattern()
	var guard ast.Expr
	if p.peekToken.Kind == token.IF {
		p.nextToken()
		p.nextToken()
		guard = p.parseExpression(lowest)
	}
	if !p.expectPeek(token.FAT_ARROW) {
		return ast.MatchCase{Pattern: pattern, Guard: guard}
	}
	p.nextToken()
	body := p.parseBlockOrExpressionBody()

	var trailing *ast.Comment
	if p.peekToken.Kind == token.COMMA {
		p.nextToken()
	}
	if p.peekToken.Kind == token.COMMENT && !p.peekToken.PrecededByBlankLine {
		p.nextToken()
		trailing = &ast.Comment{Text: p.curToken.Literal, Pos: p.curToken.Start}
	}

	return ast.MatchCase{Pattern: pattern, Guard: guard, Body: body, TrailingComment: trailing}
}

// parseFunctionThread folds a chain of "|>" into a single FunctionThread,
// since the printer formats an entire pipe chain as one layout unit.
func (p *Parser) parseFunctionThread(left ast.Expr) ast.Expr {
	if thread, ok := left.(*ast.FunctionThread); ok {
		p.nextToken()
		fn := p.parseExpression(composition)
		thread.Functions = append(thread.Functions, fn)
		return thread
	}

	p.nextToken()
	fn := p.parseExpression(composition)
	return &ast.FunctionThread{Initial: left, Functions: []ast.Expr{fn}}
}

// parseFunctionComposition folds a chain of ">>" into a single
// FunctionComposition for the same reason as parseFunctionThread.
func (p *Parser) parseFunctionComposition(left ast.Expr) ast.Expr {
	if comp, ok := left.(*ast.FunctionComposition); ok {
		p.nextToken()
		fn := p.parseExpression(composition)
		comp.Functions = append(comp.Functions, fn)
		return comp
	}

	p.nextToken()
	fn := p.parseExpression(composition)
	return &ast.FunctionComposition{Functions: []ast.Expr{left, fn}}
}

func (p *Parser) parseRangeExpr(left ast.Expr) ast.Expr {
	inclusive := p.curToken.Kind == token.DOT_DOT_EQUAL
	if p.peekToken.Kind == token.SEMICOLON || p.peekToken.Kind == token.RPAREN ||
		p.peekToken.Kind == token.RBRACKET || p.peekToken.Kind == token.RBRACE ||
		p.peekToken.Kind == token.COMMA || p.peekToken.Kind == token.EOF {
		return &ast.RangeExpr{From: left, Inclusive: inclusive}
	}
	p.nextToken()
	to := p.parseExpression(composition)
	return &ast.RangeExpr{From: left, To: to, Inclusive: inclusive}
}

func (p *Parser) parseCallExpr(fn ast.Expr) ast.Expr {
	lparen := p.curToken.Start
	args := p.parseExprList(token.RPAREN)
	return &ast.CallExpr{Function: fn, LParen: lparen, Arguments: args, RParen: p.curToken.Start}
}

func (p *Parser) parseIndexExpr(left ast.Expr) ast.Expr {
	p.nextToken()
	idx := p.parseExpression(lowest)
	p.expectPeek(token.RBRACKET)
	return &ast.IndexExpr{Left: left, Index: idx, RBracket: p.curToken.Start}
}
