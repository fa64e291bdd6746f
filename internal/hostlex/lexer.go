// Package hostlex tokenizes the host source DSL (OQ-1). Grounded on the
// teacher's internal/lexer: a byte cursor over a source.File, diagnostics
// reported through a diag.Reporter rather than returned as a slice of
// errors, fortio/safecast-checked offset arithmetic. Identifiers and string
// literals are NFC-normalized with golang.org/x/text/unicode/norm and then
// interned through a source.Interner, so a closure capturing a string with
// combining-character variants round-trips byte-for-byte (SPEC_FULL.md §8
// boundary case) and repeated occurrences of the same name across one file
// share a single backing string.
package hostlex

import (
	"fmt"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/source"
)

type Lexer struct {
	file     *source.File
	reporter diag.Reporter
	src      []byte
	off      uint32
	limit    uint32
	interner *source.Interner
}

func New(f *source.File, reporter diag.Reporter) *Lexer {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("hostlex: content length overflow: %w", err))
	}
	return &Lexer{file: f, reporter: reporter, src: f.Content, limit: limit, interner: source.NewInterner()}
}

// intern canonicalizes s against the lexer's interner so that every
// occurrence of the same identifier or string literal within this file
// shares one backing string instance.
func (l *Lexer) intern(s string) string {
	return l.interner.MustLookup(l.interner.Intern(s))
}

// Tokenize returns every token in the file, including a trailing EOF token.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks
		}
	}
}

func (l *Lexer) peek() byte {
	if l.off >= l.limit {
		return 0
	}
	return l.src[l.off]
}

func (l *Lexer) peekAt(n uint32) byte {
	if l.off+n >= l.limit {
		return 0
	}
	return l.src[l.off+n]
}

func (l *Lexer) advance() byte {
	c := l.peek()
	l.off++
	return c
}

func (l *Lexer) span(start uint32) source.Span {
	return source.Span{File: l.file.ID, Start: start, End: l.off}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool  { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAlnum(c byte) bool  { return isAlpha(c) || isDigit(c) }
func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

func (l *Lexer) skipTrivia() {
	for l.off < l.limit {
		c := l.peek()
		if isSpace(c) {
			l.off++
			continue
		}
		if c == '#' {
			for l.off < l.limit && l.peek() != '\n' {
				l.off++
			}
			continue
		}
		break
	}
}

func (l *Lexer) report(code diag.Code, start uint32, msg string) {
	if l.reporter == nil {
		return
	}
	l.reporter.Report(code, diag.SevError, source.Span{File: l.file.ID, Start: start, End: l.off}, msg, nil)
}

func (l *Lexer) next() Token {
	l.skipTrivia()
	if l.off >= l.limit {
		return Token{Kind: EOF, Span: l.span(l.off)}
	}
	start := l.off
	c := l.advance()

	switch {
	case isDigit(c):
		return l.scanNumber(start)
	case isAlpha(c):
		return l.scanIdent(start)
	case c == '"' || c == '\'':
		return l.scanString(start, c)
	}

	switch c {
	case '(':
		return Token{Kind: LParen, Text: "(", Span: l.span(start)}
	case ')':
		return Token{Kind: RParen, Text: ")", Span: l.span(start)}
	case '[':
		return Token{Kind: LBracket, Text: "[", Span: l.span(start)}
	case ']':
		return Token{Kind: RBracket, Text: "]", Span: l.span(start)}
	case '{':
		return Token{Kind: LBrace, Text: "{", Span: l.span(start)}
	case '}':
		return Token{Kind: RBrace, Text: "}", Span: l.span(start)}
	case ':':
		return Token{Kind: Colon, Text: ":", Span: l.span(start)}
	case ',':
		return Token{Kind: Comma, Text: ",", Span: l.span(start)}
	case ';':
		return Token{Kind: Semicolon, Text: ";", Span: l.span(start)}
	case '.':
		return Token{Kind: Dot, Text: ".", Span: l.span(start)}
	case '+':
		return Token{Kind: Plus, Text: "+", Span: l.span(start)}
	case '-':
		return Token{Kind: Minus, Text: "-", Span: l.span(start)}
	case '*':
		if l.peek() == '*' {
			l.off++
			return Token{Kind: StarStar, Text: "**", Span: l.span(start)}
		}
		return Token{Kind: Star, Text: "*", Span: l.span(start)}
	case '/':
		return Token{Kind: Slash, Text: "/", Span: l.span(start)}
	case '%':
		return Token{Kind: Percent, Text: "%", Span: l.span(start)}
	case '<':
		if l.peek() == '=' {
			l.off++
			return Token{Kind: Le, Text: "<=", Span: l.span(start)}
		}
		return Token{Kind: Lt, Text: "<", Span: l.span(start)}
	case '>':
		if l.peek() == '=' {
			l.off++
			return Token{Kind: Ge, Text: ">=", Span: l.span(start)}
		}
		return Token{Kind: Gt, Text: ">", Span: l.span(start)}
	case '=':
		if l.peek() == '=' {
			l.off++
			return Token{Kind: Eq, Text: "==", Span: l.span(start)}
		}
		return Token{Kind: Assign, Text: "=", Span: l.span(start)}
	case '!':
		if l.peek() == '=' {
			l.off++
			return Token{Kind: Ne, Text: "!=", Span: l.span(start)}
		}
		l.report(diag.LexUnknownChar, start, "unexpected '!'")
		return l.next()
	}

	l.report(diag.LexUnknownChar, start, fmt.Sprintf("unexpected character %q", c))
	return l.next()
}

func (l *Lexer) scanNumber(start uint32) Token {
	isFloat := false
	for isDigit(l.peek()) {
		l.off++
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.off++
		for isDigit(l.peek()) {
			l.off++
		}
	}
	text := string(l.src[start:l.off])
	if isFloat {
		return Token{Kind: Float, Text: text, Span: l.span(start)}
	}
	return Token{Kind: Int, Text: text, Span: l.span(start)}
}

func (l *Lexer) scanIdent(start uint32) Token {
	for isAlnum(l.peek()) {
		l.off++
	}
	text := l.intern(norm.NFC.String(string(l.src[start:l.off])))
	if kw, ok := keywords[text]; ok {
		return Token{Kind: kw, Text: text, Span: l.span(start)}
	}
	return Token{Kind: Ident, Text: text, Span: l.span(start)}
}

func (l *Lexer) scanString(start uint32, quote byte) Token {
	var raw []byte
	for l.off < l.limit && l.peek() != quote {
		if l.peek() == '\\' && l.off+1 < l.limit {
			l.off++
			raw = append(raw, l.peek())
			l.off++
			continue
		}
		raw = append(raw, l.advance())
	}
	if l.off >= l.limit {
		l.report(diag.LexUnterminatedString, start, "unterminated string literal")
		return Token{Kind: String, Text: l.intern(norm.NFC.String(string(raw))), Span: l.span(start)}
	}
	l.off++ // closing quote
	return Token{Kind: String, Text: l.intern(norm.NFC.String(string(raw))), Span: l.span(start)}
}
