package grammar

import (
	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/token"
)

// Detector is the per-language contract the driver drives, one method
// per directive-driven non-terminal context. tok is nil on the final,
// post-end-of-range call (the "null" sentinel of spec.md §4.5).
type Detector interface {
	Reset()

	NextTopLevel(tok *token.Token) Directive
	NextClasses(tok *token.Token) Directive
	NextFunctionDeclaration(tok *token.Token) Directive
	NextFunctionBody(tok *token.Token) Directive

	// IsCommentBeforeFunction selects where the driver looks for a
	// FUNCTIONS node's doc comment, per spec.md §4.5: true (TS-like)
	// means the detector itself already joined a preceding
	// COMMENT_MULTILINE with the FUNCTIONS symbol at the enclosing
	// scope, so the driver wraps that comment into the FunctionGroups
	// ahead of fn. false (Python-like) means the doc comment, if any,
	// is the leading statement of the function's own body instead; the
	// driver finds it there and lifts it out into the FunctionGroups
	// the same way, so both policies end up with the same
	// Comments-then-Functions shape.
	IsCommentBeforeFunction() bool

	// SplitFunctionBody locates where FUNCTION_BODY begins within a
	// FUNCTIONS symbol's own token range (e.g. just after ':' or '{').
	// The returned index is absolute into the token stream passed to
	// Parse, and must lie within rng.
	SplitFunctionBody(toks []token.Token, rng TokenRange) int

	// CreateNode builds the ast.Node for a terminal or Classes/Functions
	// symbol. info is whatever NodeInfo the directive that produced
	// this symbol carried. FunctionDeclaration, FunctionBody, and
	// TopLevel nodes are built by the driver itself and never reach
	// this method; Filler/StatementsFiller produce no node at all.
	CreateNode(sym SymbolType, info interface{}, rng position.Range) ast.Node
}
