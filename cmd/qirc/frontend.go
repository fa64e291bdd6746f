package main

import (
	"fmt"
	"os"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/hostparse"
	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/resolver"
	"github.com/liautaud/boldr/internal/source"
	"github.com/liautaud/boldr/internal/translate"
)

// translateDefault runs Translate with no injected sources or bound
// parameters, for subcommands (like `wire encode`) that only need a quick
// round trip rather than the full --source wiring `translate` supports.
func translateDefault(prog *bytecode.Program) (*qir.Expr, error) {
	return translate.Translate(prog, nil, nil)
}

// compileFile runs a host source file through the lexer, parser and
// bytecode compiler, the same three-stage pipeline
// internal/bytecode/compiler_test.go drives for its own fixtures. The
// returned FileSet is reused by callers that go on to run internal/translate,
// since translate.Report's synthetic error spans point at file 0's origin.
func compileFile(path string) (*bytecode.Program, *diag.Bag, *source.FileSet, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	bag := diag.NewBag(100)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	toks := hostlex.New(fs.Get(id), reporter).Tokenize()
	if bag.HasErrors() {
		return nil, bag, fs, fmt.Errorf("%s: lexing failed", path)
	}

	fn, err := hostparse.Parse(toks, reporter)
	if err != nil {
		return nil, bag, fs, fmt.Errorf("%s: %w", path, err)
	}
	if bag.HasErrors() {
		return nil, bag, fs, fmt.Errorf("%s: parsing failed", path)
	}

	prog, err := bytecode.Compile(fn, reporter)
	if err != nil {
		return nil, bag, fs, fmt.Errorf("%s: %w", path, err)
	}
	return prog, bag, fs, nil
}

// parseSources turns repeated --source name=collection[:function] flags
// into a resolver.Sources table. A bare name=collection binds a SCAN;
// name=collection:function instead compiles another host file and binds it
// as a SourceFunction reference.
func parseSources(specs []string) (resolver.Sources, error) {
	out := make(resolver.Sources, len(specs))
	for _, spec := range specs {
		name, rest, ok := cut(spec, '=')
		if !ok || name == "" || rest == "" {
			return nil, fmt.Errorf("invalid --source %q (want name=collection)", spec)
		}
		collection, fnPath, hasFn := cut(rest, ':')
		if !hasFn {
			out[name] = resolver.SourceBinding{Kind: resolver.SourceCollection, Collection: collection}
			continue
		}
		fnProg, _, _, err := compileFile(fnPath)
		if err != nil {
			return nil, fmt.Errorf("--source %q: %w", spec, err)
		}
		out[name] = resolver.SourceBinding{Kind: resolver.SourceFunction, Function: fnProg}
	}
	return out, nil
}

func cut(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func colorEnabled(colorFlag string, f *os.File) bool {
	switch colorFlag {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}
