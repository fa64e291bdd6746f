package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/source"
)

// printDiagnostics renders a Bag's contents one per line, colorized the way
// the teacher's diagfmt.Pretty does for its own Bag/FileSet pair, reduced to
// a single-line-per-diagnostic rendering since the host DSL's errors don't
// need the teacher's multi-line source-context snippets.
func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, useColor bool) {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	for _, d := range bag.Items() {
		sevColor := warnColor
		if d.Severity == diag.SevError {
			sevColor = errColor
		}
		sev := d.Severity.String()
		if useColor {
			sev = sevColor.Sprint(sev)
		}
		fmt.Fprintf(w, "%s [%04d] %s: %s\n", sev, d.Code, where(fs, d.Primary), d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s (%s)\n", n.Msg, where(fs, n.Span))
		}
	}
}

func where(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return sp.String()
	}
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}
