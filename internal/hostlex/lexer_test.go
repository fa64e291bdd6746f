package hostlex_test

import (
	"testing"

	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/source"
)

type collectReporter struct {
	bag *diag.Bag
}

func (r collectReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.bag.Add(diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

func tokenize(t *testing.T, src string) []hostlex.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("<test>", []byte(src))
	bag := diag.NewBag(64)
	lx := hostlex.New(fs.Get(id), collectReporter{bag: bag})
	toks := lx.Tokenize()
	if bag.HasErrors() {
		t.Fatalf("unexpected lex errors for %q: %+v", src, bag.Items())
	}
	return toks
}

func kinds(toks []hostlex.Token) []hostlex.Kind {
	out := make([]hostlex.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeLambda(t *testing.T) {
	toks := tokenize(t, "lambda x: x * 2")
	want := []hostlex.Kind{hostlex.Lambda, hostlex.Ident, hostlex.Colon, hostlex.Ident, hostlex.Star, hostlex.Int, hostlex.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeInternsRepeatedIdentifiers(t *testing.T) {
	toks := tokenize(t, "lambda total: total + total")
	var idents []hostlex.Token
	for _, tok := range toks {
		if tok.Kind == hostlex.Ident {
			idents = append(idents, tok)
		}
	}
	if len(idents) != 3 {
		t.Fatalf("expected 3 \"total\" identifiers, got %d", len(idents))
	}
	first := idents[0].Text
	for _, tok := range idents[1:] {
		if tok.Text != first {
			t.Fatalf("identifier text mismatch: %q vs %q", tok.Text, first)
		}
	}
}

func TestTokenizeComparisonOperators(t *testing.T) {
	toks := tokenize(t, "<= >= == != < >")
	want := []hostlex.Kind{hostlex.Le, hostlex.Ge, hostlex.Eq, hostlex.Ne, hostlex.Lt, hostlex.Gt, hostlex.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks := tokenize(t, `'name'`)
	if toks[0].Kind != hostlex.String || toks[0].Text != "name" {
		t.Fatalf("got %+v, want String(\"name\")", toks[0])
	}
}

func TestUnterminatedStringReportsDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<test>", []byte(`'oops`))
	bag := diag.NewBag(8)
	lx := hostlex.New(fs.Get(id), collectReporter{bag: bag})
	lx.Tokenize()
	if !bag.HasErrors() {
		t.Fatalf("expected a lex error for an unterminated string")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("got code %v, want LexUnterminatedString", bag.Items()[0].Code)
	}
}
