// Package hostparse turns a hostlex token stream into a hostast tree (OQ-1).
// Grounded on the teacher's internal/parser: a hand-written recursive-descent
// parser with one function per precedence level, diagnostics reported
// through a diag.Reporter, a trailing EOF sentinel token so lookahead never
// indexes out of bounds.
package hostparse

import (
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostast"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/source"
)

type parser struct {
	toks     []hostlex.Token
	pos      int
	reporter diag.Reporter
	failed   bool
}

// Parse accepts either a lambda expression (`lambda x: x * 2`) or a named
// function definition (`def f(s): return [...]`) and normalizes both into a
// FuncDef: a lambda becomes an anonymous FuncDef whose body is a single
// ReturnStmt.
func Parse(toks []hostlex.Token, reporter diag.Reporter) (*hostast.FuncDef, error) {
	p := &parser{toks: toks, reporter: reporter}
	var fn *hostast.FuncDef
	switch p.cur().Kind {
	case hostlex.Def:
		fn = p.parseFuncDef()
	case hostlex.Lambda:
		fn = p.parseLambdaAsFunc()
	default:
		p.errorf(diag.SynUnexpectedToken, p.cur().Span, "expected 'def' or 'lambda'")
	}
	if p.failed {
		return nil, &ParseError{}
	}
	return fn, nil
}

// ParseError is returned when parsing failed; diagnostics describing the
// failure were already sent to the Reporter passed to Parse.
type ParseError struct{}

func (*ParseError) Error() string { return "hostparse: parse failed, see reported diagnostics" }

func (p *parser) cur() hostlex.Token { return p.toks[p.pos] }

func (p *parser) advance() hostlex.Token {
	t := p.cur()
	if t.Kind != hostlex.EOF {
		p.pos++
	}
	return t
}

func (p *parser) at(k hostlex.Kind) bool { return p.cur().Kind == k }

func (p *parser) expect(k hostlex.Kind, code diag.Code, what string) hostlex.Token {
	if p.cur().Kind != k {
		p.errorf(code, p.cur().Span, "expected "+what)
		return p.cur()
	}
	return p.advance()
}

func (p *parser) errorf(code diag.Code, sp source.Span, msg string) {
	p.failed = true
	if p.reporter != nil {
		p.reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func (p *parser) parseParamList() []string {
	p.expect(hostlex.LParen, diag.SynUnclosedParen, "'('")
	var params []string
	for !p.at(hostlex.RParen) && !p.at(hostlex.EOF) {
		name := p.expect(hostlex.Ident, diag.SynExpectIdentifier, "a parameter name")
		params = append(params, name.Text)
		if p.at(hostlex.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(hostlex.RParen, diag.SynUnclosedParen, "')'")
	return params
}

func (p *parser) parseLambdaAsFunc() *hostast.FuncDef {
	start := p.cur().Span
	p.advance() // 'lambda'
	var params []string
	for p.at(hostlex.Ident) {
		params = append(params, p.advance().Text)
		if p.at(hostlex.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(hostlex.Colon, diag.SynExpectColon, "':'")
	body := p.parseExpr()
	return &hostast.FuncDef{
		Sp:     start,
		Name:   "",
		Params: params,
		Body:   []hostast.Stmt{hostast.NewReturnStmt(start, body)},
	}
}

func (p *parser) parseFuncDef() *hostast.FuncDef {
	start := p.cur().Span
	p.advance() // 'def'
	name := p.expect(hostlex.Ident, diag.SynExpectIdentifier, "a function name")
	params := p.parseParamList()
	p.expect(hostlex.Colon, diag.SynExpectColon, "':'")
	body := p.parseSuite()
	return &hostast.FuncDef{Sp: start, Name: name.Text, Params: params, Body: body}
}

// parseSuite parses either a brace-delimited block or a single statement
// immediately following a ':'.
func (p *parser) parseSuite() []hostast.Stmt {
	if p.at(hostlex.LBrace) {
		p.advance()
		var stmts []hostast.Stmt
		for !p.at(hostlex.RBrace) && !p.at(hostlex.EOF) {
			stmts = append(stmts, p.parseStmt())
			if p.at(hostlex.Semicolon) {
				p.advance()
			}
		}
		p.expect(hostlex.RBrace, diag.SynUnclosedBrace, "'}'")
		return stmts
	}
	return []hostast.Stmt{p.parseStmt()}
}

func (p *parser) parseStmt() hostast.Stmt {
	switch p.cur().Kind {
	case hostlex.Return:
		sp := p.advance().Span
		val := p.parseExpr()
		return hostast.NewReturnStmt(sp, val)
	case hostlex.Try:
		sp := p.advance().Span
		body := p.parseSuite()
		p.expect(hostlex.Except, diag.SynUnexpectedToken, "'except'")
		exceptBody := p.parseSuite()
		return hostast.NewTryStmt(sp, body, exceptBody)
	default:
		sp := p.cur().Span
		val := p.parseExpr()
		return hostast.NewExprStmt(sp, val)
	}
}

// --- expressions, by descending precedence -------------------------------
//
// ternary -> or -> and -> not -> comparison -> additive -> multiplicative ->
// unary -> power -> postfix -> primary

func (p *parser) parseExpr() hostast.Expr { return p.parseTernary() }

func (p *parser) parseTernary() hostast.Expr {
	cond := p.parseOr()
	if p.at(hostlex.If) {
		sp := p.advance().Span
		then := cond
		testExpr := p.parseOr()
		p.expect(hostlex.Else, diag.SynUnexpectedToken, "'else'")
		elseExpr := p.parseTernary()
		return hostast.NewIfExp(sp, testExpr, then, elseExpr)
	}
	return cond
}

func (p *parser) parseOr() hostast.Expr {
	x := p.parseAnd()
	for p.at(hostlex.Or) {
		sp := p.advance().Span
		y := p.parseAnd()
		x = hostast.NewBinary(sp, "or", x, y)
	}
	return x
}

func (p *parser) parseAnd() hostast.Expr {
	x := p.parseNot()
	for p.at(hostlex.And) {
		sp := p.advance().Span
		y := p.parseNot()
		x = hostast.NewBinary(sp, "and", x, y)
	}
	return x
}

func (p *parser) parseNot() hostast.Expr {
	if p.at(hostlex.Not) {
		sp := p.advance().Span
		x := p.parseNot()
		return hostast.NewUnary(sp, "not", x)
	}
	return p.parseComparison()
}

var comparisonOps = map[hostlex.Kind]string{
	hostlex.Lt: "<", hostlex.Le: "<=", hostlex.Eq: "==",
	hostlex.Ne: "!=", hostlex.Ge: ">=", hostlex.Gt: ">",
}

// parseComparison accepts a single, non-chained comparison — `a < b < c` is
// not supported, matching the normalized COMPARE_OP opcode's single-operator
// shape.
func (p *parser) parseComparison() hostast.Expr {
	x := p.parseAdditive()
	if op, ok := comparisonOps[p.cur().Kind]; ok {
		sp := p.advance().Span
		y := p.parseAdditive()
		return hostast.NewBinary(sp, op, x, y)
	}
	return x
}

func (p *parser) parseAdditive() hostast.Expr {
	x := p.parseMultiplicative()
	for p.at(hostlex.Plus) || p.at(hostlex.Minus) {
		op := "+"
		if p.at(hostlex.Minus) {
			op = "-"
		}
		sp := p.advance().Span
		y := p.parseMultiplicative()
		x = hostast.NewBinary(sp, op, x, y)
	}
	return x
}

func (p *parser) parseMultiplicative() hostast.Expr {
	x := p.parseUnary()
	for p.at(hostlex.Star) || p.at(hostlex.Slash) || p.at(hostlex.Percent) {
		var op string
		switch p.cur().Kind {
		case hostlex.Star:
			op = "*"
		case hostlex.Slash:
			op = "/"
		default:
			op = "%"
		}
		sp := p.advance().Span
		y := p.parseUnary()
		x = hostast.NewBinary(sp, op, x, y)
	}
	return x
}

func (p *parser) parseUnary() hostast.Expr {
	if p.at(hostlex.Minus) {
		sp := p.advance().Span
		x := p.parseUnary()
		return hostast.NewUnary(sp, "-", x)
	}
	return p.parsePower()
}

// parsePower is right-associative: `2 ** 3 ** 2` is `2 ** (3 ** 2)`.
func (p *parser) parsePower() hostast.Expr {
	x := p.parsePostfix()
	if p.at(hostlex.StarStar) {
		sp := p.advance().Span
		y := p.parseUnary()
		return hostast.NewBinary(sp, "**", x, y)
	}
	return x
}

func (p *parser) parsePostfix() hostast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case hostlex.Dot:
			sp := p.advance().Span
			field := p.expect(hostlex.Ident, diag.SynExpectIdentifier, "an attribute name")
			x = hostast.NewAttr(sp, x, field.Text)
		case hostlex.LParen:
			sp := p.advance().Span
			var args []hostast.Expr
			for !p.at(hostlex.RParen) && !p.at(hostlex.EOF) {
				args = append(args, p.parseExpr())
				if p.at(hostlex.Comma) {
					p.advance()
					continue
				}
				break
			}
			p.expect(hostlex.RParen, diag.SynUnclosedParen, "')'")
			x = hostast.NewCall(sp, x, args)
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() hostast.Expr {
	t := p.cur()
	switch t.Kind {
	case hostlex.Int:
		p.advance()
		return hostast.NewNumberLit(t.Span, parseInt(t.Text))
	case hostlex.Float:
		p.advance()
		return hostast.NewFloatLit(t.Span, parseFloat(t.Text))
	case hostlex.String:
		p.advance()
		return hostast.NewStringLit(t.Span, t.Text)
	case hostlex.True:
		p.advance()
		return hostast.NewBoolLit(t.Span, true)
	case hostlex.False:
		p.advance()
		return hostast.NewBoolLit(t.Span, false)
	case hostlex.None:
		p.advance()
		return hostast.NewNoneLit(t.Span)
	case hostlex.Ident:
		p.advance()
		return hostast.NewName(t.Span, t.Text)
	case hostlex.LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(hostlex.RParen, diag.SynUnclosedParen, "')'")
		return x
	case hostlex.LBracket:
		return p.parseListLitOrComp()
	case hostlex.LBrace:
		return p.parseDictLitOrComp()
	case hostlex.Lambda:
		return p.parseLambdaExpr()
	}
	p.errorf(diag.SynUnexpectedToken, t.Span, "unexpected token in expression")
	p.advance()
	return hostast.NewNoneLit(t.Span)
}

func (p *parser) parseLambdaExpr() hostast.Expr {
	sp := p.advance().Span // 'lambda'
	var params []string
	for p.at(hostlex.Ident) {
		params = append(params, p.advance().Text)
		if p.at(hostlex.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(hostlex.Colon, diag.SynExpectColon, "':'")
	body := p.parseExpr()
	return hostast.NewLambda(sp, params, body)
}

// parseListLitOrComp handles both `[a, b, c]` and `[e.name for e in xs if
// e.salary < s]`; the two forms share a prefix (one leading expression) and
// diverge on whether a `for` follows.
func (p *parser) parseListLitOrComp() hostast.Expr {
	sp := p.advance().Span // '['
	if p.at(hostlex.RBracket) {
		p.advance()
		return hostast.NewListLit(sp, nil)
	}
	first := p.parseExpr()
	if p.at(hostlex.For) {
		clauses := p.parseCompClauses()
		p.expect(hostlex.RBracket, diag.SynUnclosedBracket, "']'")
		return foldListComp(sp, first, clauses)
	}
	elems := []hostast.Expr{first}
	for p.at(hostlex.Comma) {
		p.advance()
		if p.at(hostlex.RBracket) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(hostlex.RBracket, diag.SynUnclosedBracket, "']'")
	return hostast.NewListLit(sp, elems)
}

// parseDictLitOrComp handles `{k: v, ...}` and `{e.name: e.salary for e in
// xs if ...}`.
func (p *parser) parseDictLitOrComp() hostast.Expr {
	sp := p.advance().Span // '{'
	if p.at(hostlex.RBrace) {
		p.advance()
		return hostast.NewDictLit(sp, nil)
	}
	firstKey := p.parseExpr()
	p.expect(hostlex.Colon, diag.SynExpectColon, "':'")
	firstVal := p.parseExpr()
	if p.at(hostlex.For) {
		clauses := p.parseCompClauses()
		p.expect(hostlex.RBrace, diag.SynUnclosedBrace, "'}'")
		return foldDictComp(sp, firstKey, firstVal, clauses)
	}
	entries := []hostast.DictEntry{{Key: firstKey, Value: firstVal}}
	for p.at(hostlex.Comma) {
		p.advance()
		if p.at(hostlex.RBrace) {
			break
		}
		k := p.parseExpr()
		p.expect(hostlex.Colon, diag.SynExpectColon, "':'")
		v := p.parseExpr()
		entries = append(entries, hostast.DictEntry{Key: k, Value: v})
	}
	p.expect(hostlex.RBrace, diag.SynUnclosedBrace, "'}'")
	return hostast.NewDictLit(sp, entries)
}

// compClause is one `for VAR in ITER [if COND]*` tail of a comprehension.
type compClause struct {
	v    string
	iter hostast.Expr
	ifs  []hostast.Expr
}

// parseCompClauses parses one or more consecutive `for VAR in ITER [if
// COND]*` clauses, the shared tail of both list and dict comprehensions
// (`[x for a in xs for b in ys if b > a]`). Each `if` binds to the `for`
// clause it directly follows.
func (p *parser) parseCompClauses() []compClause {
	var clauses []compClause
	for p.at(hostlex.For) {
		p.advance()
		name := p.expect(hostlex.Ident, diag.SynExpectIdentifier, "a loop variable")
		p.expect(hostlex.In, diag.SynForMissingIn, "'in'")
		iterExpr := p.parseOr()
		var conds []hostast.Expr
		for p.at(hostlex.If) {
			p.advance()
			conds = append(conds, p.parseOr())
		}
		clauses = append(clauses, compClause{v: name.Text, iter: iterExpr, ifs: conds})
	}
	return clauses
}

// foldListComp composes a `for`-clause chain into nested ListComp nodes per
// §4.3's "nested for clauses compose by treating the inner comprehension as
// the projection": the innermost clause wraps elt directly, and each
// enclosing clause wraps the previous result as its own element expression.
func foldListComp(sp source.Span, elt hostast.Expr, clauses []compClause) hostast.Expr {
	last := clauses[len(clauses)-1]
	node := hostast.Expr(hostast.NewListComp(sp, elt, last.v, last.iter, last.ifs))
	for i := len(clauses) - 2; i >= 0; i-- {
		c := clauses[i]
		node = hostast.NewListComp(sp, node, c.v, c.iter, c.ifs)
	}
	return node
}

// foldDictComp is foldListComp's dict-comprehension counterpart: only the
// innermost clause produces the DictComp's key/value pair, since every
// enclosing clause's projected value is itself a whole dict, collected into
// a list of dicts rather than merged into one.
func foldDictComp(sp source.Span, key, value hostast.Expr, clauses []compClause) hostast.Expr {
	last := clauses[len(clauses)-1]
	node := hostast.Expr(hostast.NewDictComp(sp, key, value, last.v, last.iter, last.ifs))
	for i := len(clauses) - 2; i >= 0; i-- {
		c := clauses[i]
		node = hostast.NewListComp(sp, node, c.v, c.iter, c.ifs)
	}
	return node
}
