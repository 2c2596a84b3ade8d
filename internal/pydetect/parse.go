package pydetect

import (
	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/grammar"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/pylex"
)

// Parse lexes and parses a full Python source file: it determines the
// file's indentation unit, tokenizes it, and drives grammar.Parser
// with a freshly built Detector over the result.
func Parse(source string) (*ast.TopLevel, error) {
	unit, tabIndent, err := DetectIndentUnit(source)
	if err != nil {
		return nil, err
	}
	lines := position.NewLineIndex(source)
	toks, err := pylex.Tokenize(source)
	if err != nil {
		ue := err.(*pylex.UnterminatedError)
		idx := lines.AtOffset(ue.Offset)
		return nil, diagnostics.NewParsingError(diagnostics.PhaseLexer, diagnostics.ErrL001, position.Range{Start: idx, End: idx}, ue.What)
	}
	p := grammar.NewParser(New(unit, tabIndent), toks, lines, len(source))
	return p.Parse()
}
