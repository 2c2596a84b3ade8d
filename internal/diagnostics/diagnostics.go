// Package diagnostics implements the two error classes structlens's
// pipeline can fail with: an input-side CodeParsingError and an
// implementation-side CodeParserImplError, both backed by the same
// phase-tagged, templated error type.
package diagnostics

import (
	"fmt"

	"github.com/codeglass/structlens/internal/position"
)

// Phase identifies which pipeline stage raised an error.
type Phase string

const (
	PhaseLexer     Phase = "lexer"
	PhaseParser    Phase = "parser"
	PhaseTreeToken Phase = "treetoken"
)

// Kind distinguishes the two error classes spec.md §7 requires.
type Kind string

const (
	KindParsing Kind = "parsing" // CodeParsingError: bad input
	KindImpl    Kind = "impl"    // CodeParserImplError: bad detector
)

// ErrorCode is a stable, documented identifier for one error template.
type ErrorCode string

const (
	// Lexer errors (input-side)
	ErrL001 ErrorCode = "L001" // unterminated string or comment at end of stream
	ErrL002 ErrorCode = "L002" // mixed tabs and spaces in Python indentation

	// Parser errors (input-side)
	ErrP001 ErrorCode = "P001" // mismatched or unbalanced brace
	ErrP002 ErrorCode = "P002" // non-parsed residue after a non-terminal's production
	ErrP003 ErrorCode = "P003" // class or function missing its ':' / '{' delimiter

	// Implementation errors (detector contract violations)
	ErrI001 ErrorCode = "I001" // detector emitted TOP_LEVEL as a symbol
	ErrI002 ErrorCode = "I002" // directive split would yield an empty piece
	ErrI003 ErrorCode = "I003" // parseRange not contained within its own symbol range
	ErrI004 ErrorCode = "I004" // FUNCTIONS symbol carried a nil parseRange
	ErrI005 ErrorCode = "I005" // two expression-matcher patterns completed on the same symbol
	ErrI006 ErrorCode = "I006" // FunctionGroups assembled with a shape other than 1 or 2 children
	ErrI007 ErrorCode = "I007" // detector yielded a symbol outside its non-terminal's legal RHS set

	// Tree tokenizer errors (unreachable on a well-formed AST; see spec.md §7)
	ErrT001 ErrorCode = "T001" // flattening left a gap unaccounted for
)

var templates = map[ErrorCode]string{
	ErrL001: "unterminated %s at end of input",
	ErrL002: "mixed tabs and spaces in indentation",
	ErrP001: "mismatched brace: expected '%s', got '%s'",
	ErrP002: "non-parsed portion of input remains after %s",
	ErrP003: "expected '%s' after %s header",
	ErrI001: "detector for %s emitted a TOP_LEVEL symbol",
	ErrI002: "directive from %s detector would split an empty token range",
	ErrI003: "parseRange %s is not contained in symbol range %s",
	ErrI004: "%s symbol carried a nil parseRange and cannot be split into a declaration and a body",
	ErrI005: "expression matcher: patterns %s and %s both completed on the same symbol",
	ErrI006: "FunctionGroups assembled with %d children, expected 1 or 2",
	ErrI007: "symbol %s is not a legal production of %s",
	ErrT001: "flattening left a gap unaccounted for",
}

// StructuralError is the concrete type behind both CodeParsingError and
// CodeParserImplError (see ParsingError / ImplError below).
type StructuralError struct {
	Kind  Kind
	Code  ErrorCode
	Phase Phase
	Args  []interface{}
	Range position.Range
	File  string
}

func (e *StructuralError) Error() string {
	template, ok := templates[e.Code]
	if !ok {
		return fmt.Sprintf("structlens: unknown error code %s", e.Code)
	}
	message := fmt.Sprintf(template, e.Args...)

	prefix := ""
	if e.File != "" {
		prefix = e.File + ": "
	}
	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}
	return fmt.Sprintf("%s%serror at %s [%s]: %s", prefix, phaseStr, e.Range.Start, e.Code, message)
}

// ParsingError is an input-side syntactic violation: the source being
// analyzed is malformed. The parse fails fast; there is no recovery.
type ParsingError struct{ *StructuralError }

// ImplError is an implementation-side contract violation by a language
// detector — a bug in the detector, not in the source being analyzed.
type ImplError struct{ *StructuralError }

// NewParsingError builds a CodeParsingError for the given phase/code/range.
func NewParsingError(phase Phase, code ErrorCode, rng position.Range, args ...interface{}) *ParsingError {
	return &ParsingError{&StructuralError{Kind: KindParsing, Code: code, Phase: phase, Range: rng, Args: args}}
}

// NewImplError builds a CodeParserImplError for the given phase/code/range.
func NewImplError(phase Phase, code ErrorCode, rng position.Range, args ...interface{}) *ImplError {
	return &ImplError{&StructuralError{Kind: KindImpl, Code: code, Phase: phase, Range: rng, Args: args}}
}

// WithFile returns a copy of the error annotated with the source file
// path, for CLI-style reporting.
func (e *ParsingError) WithFile(file string) *ParsingError {
	cp := *e.StructuralError
	cp.File = file
	return &ParsingError{&cp}
}
