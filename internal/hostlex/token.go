package hostlex

import "github.com/liautaud/boldr/internal/source"

type Kind uint8

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	True
	False
	None
	Def
	Lambda
	Return
	If
	Else
	For
	In
	And
	Or
	Not
	Try
	Except
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Colon
	Comma
	Dot
	Plus
	Minus
	Star
	StarStar
	Slash
	Percent
	Lt
	Le
	Eq
	Ne
	Ge
	Gt
	Assign
	Semicolon
)

var keywords = map[string]Kind{
	"True":   True,
	"False":  False,
	"None":   None,
	"def":    Def,
	"lambda": Lambda,
	"return": Return,
	"if":     If,
	"else":   Else,
	"for":    For,
	"in":     In,
	"and":    And,
	"or":     Or,
	"not":    Not,
	"try":    Try,
	"except": Except,
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case Int:
		return "int literal"
	case Float:
		return "float literal"
	case String:
		return "string literal"
	default:
		for text, kk := range keywords {
			if kk == k {
				return text
			}
		}
		return "token"
	}
}

// Token is a single lexical unit together with its source span.
type Token struct {
	Kind Kind
	Text string
	Span source.Span
}
