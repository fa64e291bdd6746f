// Package diag defines the diagnostic model shared by the host-language
// front end (internal/hostlex, internal/hostparse) and the translator
// (internal/bytecode, internal/interp, internal/resolver).
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity - tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code - compact numeric identifier (see codes.go) with stable ranges
//     per producer: 1000s for the lexer, 2000s for the parser, 3000s for the
//     bytecode adapter, 4000s for the symbolic interpreter, 5000s for the
//     binding resolver.
//   - Message - human oriented text.
//   - Primary span - the source.Span of the issue. For translator errors,
//     which are indexed by bytecode offset rather than source text, Primary
//     is a synthetic span whose Start and End both equal the offset.
//   - Notes - optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Producers use a diag.Reporter to decouple emission from storage.
// diag.BagReporter aggregates diagnostics into a Bag, which supports
// sorting and deduplication. The CLI renders a Bag with fatih/color.
package diag
