package interp

import (
	"fmt"

	"github.com/liautaud/boldr/internal/diag"
)

// Error is the Symbolic Interpreter's failure mode (§7's error taxonomy for
// the interp-layer codes). Offset is the instruction index — the adapter's
// simplified stand-in for a byte offset (internal/bytecode.Instr.Offset) —
// at which the failure was detected, so a caller can report a diagnostic
// pointing at the responsible instruction.
type Error struct {
	Code    diag.Code
	Offset  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("interp: %s at offset %d: %s", e.Code, e.Offset, e.Message)
}

func errAt(code diag.Code, offset int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Offset: offset, Message: fmt.Sprintf(format, args...)}
}
