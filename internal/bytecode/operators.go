package bytecode

// canonicalOperatorNames maps a host-language operator token, as it appears
// in hostast.Binary.Op, to the fixed operator-module name §4.3 mandates
// (Builtin("operator", "add"), not Builtin("operator", "+")) so every
// consumer of translated QIR sees the same closed vocabulary regardless of
// what surface syntax produced it.
var canonicalOperatorNames = map[string]string{
	"+":   "add",
	"-":   "sub",
	"*":   "mul",
	"/":   "div",
	"%":   "mod",
	"**":  "pow",
	"<":   "lt",
	"<=":  "le",
	"==":  "eq",
	"!=":  "ne",
	">=":  "ge",
	">":   "gt",
	"and": "and",
	"or":  "or",
	"not": "not",
}

// CanonicalOperatorName resolves a host-language operator token to its fixed
// operator-module name. It panics on an unrecognized token: the parser only
// ever produces operators from this closed set, so an unknown token means
// the parser and this table have drifted out of sync.
func CanonicalOperatorName(token string) string {
	name, ok := canonicalOperatorNames[token]
	if !ok {
		panic("bytecode: unknown operator token " + token)
	}
	return name
}
