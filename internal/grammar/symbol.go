// Package grammar implements the generic production-rule engine of
// spec.md §4.5: a recursive driver over a fixed small grammar of
// non-terminals, consuming a token stream and letting a language
// detector classify contiguous token runs into terminals/non-terminals
// via the Symbol Addition Directive protocol.
package grammar

import "fmt"

// SymbolType tags every terminal and non-terminal in the grammar.
type SymbolType string

const (
	// Non-terminals
	TopLevel            SymbolType = "TOP_LEVEL"
	Classes             SymbolType = "CLASSES"
	Functions           SymbolType = "FUNCTIONS"
	FunctionDeclaration SymbolType = "FUNCTION_DECLARATION"
	FunctionBody        SymbolType = "FUNCTION_BODY"

	// Terminals
	References         SymbolType = "REFERENCES"
	Argument           SymbolType = "ARGUMENT"
	Attributes         SymbolType = "ATTRIBUTES"
	CommentSingleline  SymbolType = "COMMENT_SINGLELINE"
	CommentMultiline   SymbolType = "COMMENT_MULTILINE"
	Filler             SymbolType = "FILLER"
	StatementsFiller   SymbolType = "STATEMENTS_FILLER"
)

// IsNonTerminal reports whether t is one of the five non-terminals.
func IsNonTerminal(t SymbolType) bool {
	switch t {
	case TopLevel, Classes, Functions, FunctionDeclaration, FunctionBody:
		return true
	}
	return false
}

// productions maps each non-terminal to its legal RHS symbol set, per
// the grammar in spec.md §4.5. FUNCTIONS is handled as a driver special
// case (exactly FUNCTION_DECLARATION then FUNCTION_BODY) rather than
// through this table — see driver.go.
var productions = map[SymbolType]map[SymbolType]bool{
	TopLevel: {
		Filler: true, StatementsFiller: true, CommentSingleline: true, CommentMultiline: true,
		References: true, Classes: true, Functions: true,
	},
	Classes: {
		Filler: true, StatementsFiller: true, CommentSingleline: true, CommentMultiline: true,
		Attributes: true, Functions: true,
	},
	FunctionDeclaration: {
		Filler: true, CommentSingleline: true, CommentMultiline: true, Argument: true,
	},
	FunctionBody: {
		Filler: true, StatementsFiller: true, CommentSingleline: true, CommentMultiline: true,
	},
}

// Allowed reports whether sym is a legal production of the given
// non-terminal.
func Allowed(nt, sym SymbolType) bool {
	set, ok := productions[nt]
	if !ok {
		return false
	}
	return set[sym]
}

// TokenRange is a half-open [Start, End) span of token indices.
type TokenRange struct{ Start, End int }

func (r TokenRange) Len() int { return r.End - r.Start }
func (r TokenRange) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// Contains reports whether r fully encloses other.
func (r TokenRange) Contains(other TokenRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Symbol is one entry accumulated by the driver for a non-terminal's
// production: a classified token run, optionally recursing further via
// ParseRange, carrying whatever opaque NodeInfo the detector attached
// for node construction.
type Symbol struct {
	Type       SymbolType
	Tokens     TokenRange
	ParseRange *TokenRange // non-nil only for non-terminal symbols
	NodeInfo   interface{}
}
