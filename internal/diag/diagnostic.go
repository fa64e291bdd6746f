package diag

import (
	"github.com/liautaud/boldr/internal/source"
)

// Note attaches secondary context to a Diagnostic, e.g. "parameter declared
// here" or "source table registered here".
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
