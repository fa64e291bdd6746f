package hostparse

import "strconv"

// parseInt and parseFloat assume the lexer already validated the digit
// shape, so a parse error here would mean the lexer and parser disagree
// about what a number looks like; treat that as unreachable and fall back to
// the zero value rather than propagating a second error for the same token.

func parseInt(text string) int64 {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(text string) float64 {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return f
}
