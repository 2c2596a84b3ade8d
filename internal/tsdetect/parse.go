package tsdetect

import (
	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/grammar"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/tslex"
)

// Parse lexes and parses a full TypeScript source file, driving
// grammar.Parser with a freshly built Detector over the token stream.
func Parse(source string) (*ast.TopLevel, error) {
	lines := position.NewLineIndex(source)
	toks, err := tslex.Tokenize(source)
	if err != nil {
		ue := err.(*tslex.UnterminatedError)
		idx := lines.AtOffset(ue.Offset)
		return nil, diagnostics.NewParsingError(diagnostics.PhaseLexer, diagnostics.ErrL001, position.Range{Start: idx, End: idx}, ue.What)
	}
	p := grammar.NewParser(New(), toks, lines, len(source))
	return p.Parse()
}
