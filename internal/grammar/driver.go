package grammar

import (
	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/token"
)

// Parser drives a Detector over a fixed token stream, turning the
// Symbol Addition Directive protocol into an ast.TopLevel tree. One
// Parser is good for exactly one Parse call.
type Parser struct {
	detector  Detector
	toks      []token.Token
	lines     *position.LineIndex
	sourceLen int
}

// NewParser builds a Parser over toks, a token stream produced by
// lexing source, and lines, the LineIndex built over that same source.
func NewParser(detector Detector, toks []token.Token, lines *position.LineIndex, sourceLen int) *Parser {
	return &Parser{detector: detector, toks: toks, lines: lines, sourceLen: sourceLen}
}

// Parse runs the driver over the whole token stream and returns the
// tree root. Returns a *diagnostics.ParsingError for malformed input
// and a *diagnostics.ImplError for a detector contract violation.
func (p *Parser) Parse() (*ast.TopLevel, error) {
	p.detector.Reset()
	rng := TokenRange{Start: 0, End: len(p.toks)}
	root := ast.NewTopLevel(p.tokenRangeToPosition(rng))
	if err := p.parseNonTerminal(TopLevel, rng, root); err != nil {
		return nil, err
	}
	return root, nil
}

// parseNonTerminal runs nt's directive loop over rng and attaches the
// resulting nodes onto node in order.
func (p *Parser) parseNonTerminal(nt SymbolType, rng TokenRange, node ast.Node) error {
	symbols, err := p.collectSymbols(nt, rng)
	if err != nil {
		return err
	}
	return p.buildAndAttach(nt, symbols, node)
}

func (p *Parser) nextFuncFor(nt SymbolType) func(tok *token.Token) Directive {
	switch nt {
	case TopLevel:
		return p.detector.NextTopLevel
	case Classes:
		return p.detector.NextClasses
	case FunctionDeclaration:
		return p.detector.NextFunctionDeclaration
	case FunctionBody:
		return p.detector.NextFunctionBody
	default:
		panic("grammar: " + string(nt) + " is not driven through the per-token directive loop")
	}
}

// collectSymbols runs the directive loop for nt over rng, mirroring
// internal/lexer.Lexer's buffer-accumulate-then-split shape but over
// token indices and the richer four-constructor Directive algebra. The
// sentinel call with tok == nil happens once, after the last real
// token in rng has been fed.
func (p *Parser) collectSymbols(nt SymbolType, rng TokenRange) ([]Symbol, error) {
	next := p.nextFuncFor(nt)

	var symbols []Symbol
	bufStart := rng.Start
	pos := rng.Start
	for i := rng.Start; i <= rng.End; i++ {
		var tokPtr *token.Token
		if i < rng.End {
			tokPtr = &p.toks[i]
			pos = i + 1
		}
		d := next(tokPtr)
		if !d.emit {
			continue
		}
		newSymbols, newBufStart, err := p.applyDirective(nt, d, bufStart, pos)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, newSymbols...)
		bufStart = newBufStart
	}
	if bufStart != rng.End {
		return nil, diagnostics.NewParsingError(
			diagnostics.PhaseParser, diagnostics.ErrP002,
			p.tokenRangeToPosition(TokenRange{Start: bufStart, End: rng.End}),
			string(nt),
		)
	}
	return symbols, nil
}

// applyDirective commits the buffer [bufStart, pos) per d, returning
// the symbol(s) produced and the new buffer start. All four Directive
// shapes reduce to the same arithmetic: close off retainLen tokens as
// a still-open tail, then split what's left into one or two symbols.
func (p *Parser) applyDirective(nt SymbolType, d Directive, bufStart, pos int) ([]Symbol, int, error) {
	closeEnd := pos - d.retainLen
	firstEnd := closeEnd
	if d.hasSecond {
		firstEnd = closeEnd - d.secondLen
	}
	if firstEnd <= bufStart {
		return nil, 0, diagnostics.NewImplError(
			diagnostics.PhaseParser, diagnostics.ErrI002,
			p.tokenRangeToPosition(TokenRange{Start: bufStart, End: firstEnd}),
			string(nt),
		)
	}

	firstRange := TokenRange{Start: bufStart, End: firstEnd}
	if err := p.checkProduction(nt, d.sym, firstRange, d.parseRange); err != nil {
		return nil, 0, err
	}
	symbols := []Symbol{{Type: d.sym, Tokens: firstRange, ParseRange: d.parseRange, NodeInfo: d.info}}

	if d.hasSecond {
		secondRange := TokenRange{Start: firstEnd, End: closeEnd}
		if err := p.checkProduction(nt, d.secondSym, secondRange, d.secondRange); err != nil {
			return nil, 0, err
		}
		symbols = append(symbols, Symbol{Type: d.secondSym, Tokens: secondRange, ParseRange: d.secondRange, NodeInfo: d.secondInfo})
	}
	return symbols, closeEnd, nil
}

// checkProduction validates a single committed symbol: it must be a
// legal RHS of nt, and any parseRange it carries must lie within its
// own token range.
func (p *Parser) checkProduction(nt, sym SymbolType, tokens TokenRange, parseRange *TokenRange) error {
	if !Allowed(nt, sym) {
		return diagnostics.NewImplError(
			diagnostics.PhaseParser, diagnostics.ErrI007,
			p.tokenRangeToPosition(tokens), string(sym), string(nt),
		)
	}
	if parseRange != nil && !tokens.Contains(*parseRange) {
		return diagnostics.NewImplError(
			diagnostics.PhaseParser, diagnostics.ErrI003,
			p.tokenRangeToPosition(tokens), parseRange.String(), tokens.String(),
		)
	}
	return nil
}

// buildAndAttach turns a flat symbol list into ast nodes and attaches
// them onto parent in order, recursing into non-terminal ParseRanges
// and handling the two FunctionGroups doc-comment policies.
func (p *Parser) buildAndAttach(nt SymbolType, symbols []Symbol, parent ast.Node) error {
	i := 0
	for i < len(symbols) {
		sym := symbols[i]
		switch sym.Type {
		case Filler, StatementsFiller:
			i++

		case Functions:
			group, err := p.buildFunctionGroup(sym, nil)
			if err != nil {
				return err
			}
			ast.Attach(parent, group)
			i++

		case CommentMultiline:
			if p.detector.IsCommentBeforeFunction() && i+1 < len(symbols) && symbols[i+1].Type == Functions {
				leading := sym
				group, err := p.buildFunctionGroup(symbols[i+1], &leading)
				if err != nil {
					return err
				}
				ast.Attach(parent, group)
				i += 2
				continue
			}
			node := p.detector.CreateNode(sym.Type, sym.NodeInfo, p.tokenRangeToPosition(sym.Tokens))
			ast.Attach(parent, node)
			i++

		default:
			node := p.detector.CreateNode(sym.Type, sym.NodeInfo, p.tokenRangeToPosition(sym.Tokens))
			if IsNonTerminal(sym.Type) && sym.ParseRange != nil {
				if cls, ok := node.(*ast.Classes); ok {
					ast.SetInnerRange(cls, p.tokenRangeToPosition(*sym.ParseRange))
				}
				if err := p.parseNonTerminal(sym.Type, *sym.ParseRange, node); err != nil {
					return err
				}
			}
			ast.Attach(parent, node)
			i++
		}
	}
	return nil
}

// buildFunctionGroup assembles the FunctionGroups wrapper for one
// FUNCTIONS symbol: it splits the symbol's own range into a
// FUNCTION_DECLARATION and a FUNCTION_BODY via the detector's
// SplitFunctionBody boundary (the "FUNCTIONS special case" of
// spec.md §4.5, handled here instead of through the generic production
// table because it is always exactly one boundary point, never a
// per-token directive decision).
//
// leadingComment, when non-nil, is a COMMENT_MULTILINE symbol the
// caller found immediately before this FUNCTIONS symbol in source
// order (IsCommentBeforeFunction() == true, a TS-like leading doc
// comment); it is wrapped into the group ahead of fn. Detectors with
// IsCommentBeforeFunction() == false (Python-like) never pass one, but
// may still contribute a doc comment of their own: a leading
// COMMENT_MULTILINE at rank 0 of the function's own body is lifted out
// of that body and attached to the group the same way, per spec.md
// §4.5's FUNCTION_BODY rule. ast.Attach only enforces that a child's
// range lies within its parent's, not that a node's children partition
// disjoint source ranges, so the comment's range staying inside fn's
// own full range is not a problem; internal/treetoken's faithful
// flattening already has to tolerate it, since a FunctionGroups prints
// its Comments child and then fn's own source text, which still
// contains the docstring bytes.
func (p *Parser) buildFunctionGroup(sym Symbol, leadingComment *Symbol) (ast.Node, error) {
	node := p.detector.CreateNode(Functions, sym.NodeInfo, p.tokenRangeToPosition(sym.Tokens))
	fn, ok := node.(*ast.Functions)
	if !ok {
		panic("grammar: detector.CreateNode(FUNCTIONS, ...) must return *ast.Functions")
	}
	if sym.ParseRange == nil {
		return nil, diagnostics.NewImplError(diagnostics.PhaseParser, diagnostics.ErrI004, p.tokenRangeToPosition(sym.Tokens), string(Functions))
	}

	bodyStart := p.detector.SplitFunctionBody(p.toks, *sym.ParseRange)
	if bodyStart < sym.ParseRange.Start || bodyStart > sym.ParseRange.End {
		return nil, diagnostics.NewImplError(
			diagnostics.PhaseParser, diagnostics.ErrI003,
			p.tokenRangeToPosition(*sym.ParseRange),
			(&TokenRange{Start: bodyStart, End: bodyStart}).String(), sym.ParseRange.String(),
		)
	}
	declRange := TokenRange{Start: sym.ParseRange.Start, End: bodyStart}
	bodyRange := TokenRange{Start: bodyStart, End: sym.ParseRange.End}
	if bodyRange.Len() > 0 {
		ast.SetInnerRange(fn, p.tokenRangeToPosition(bodyRange))
	}

	decl := ast.NewFunctionDeclaration(p.tokenRangeToPosition(declRange))
	if err := p.parseNonTerminal(FunctionDeclaration, declRange, decl); err != nil {
		return nil, err
	}
	ast.Attach(fn, decl)

	bodySymbols, err := p.collectSymbols(FunctionBody, bodyRange)
	if err != nil {
		return nil, err
	}

	docComment := leadingComment
	if docComment == nil {
		if idx, ok := firstSignificantSymbol(bodySymbols); ok && bodySymbols[idx].Type == CommentMultiline {
			lifted := bodySymbols[idx]
			docComment = &lifted
			bodySymbols = append(append([]Symbol{}, bodySymbols[:idx]...), bodySymbols[idx+1:]...)
		}
	}

	if err := p.buildAndAttach(FunctionBody, bodySymbols, fn); err != nil {
		return nil, err
	}
	fn.SetHasFunctionBody(hasSignificantSymbol(bodySymbols))

	groupTokens := sym.Tokens
	if leadingComment != nil {
		groupTokens = TokenRange{Start: leadingComment.Tokens.Start, End: sym.Tokens.End}
	}
	group := ast.NewFunctionGroups(p.tokenRangeToPosition(groupTokens))
	if docComment != nil {
		cnode := p.detector.CreateNode(docComment.Type, docComment.NodeInfo, p.tokenRangeToPosition(docComment.Tokens))
		ast.Attach(group, cnode)
	}
	ast.Attach(group, fn)
	return group, nil
}

// firstSignificantSymbol returns the index of the first symbol in
// symbols that is not FILLER (whitespace-only), and whether one
// exists. STATEMENTS_FILLER counts as significant: it is real,
// un-further-classified body code, not padding (spec.md §4.5).
func firstSignificantSymbol(symbols []Symbol) (int, bool) {
	for i, sym := range symbols {
		if sym.Type != Filler {
			return i, true
		}
	}
	return 0, false
}

// hasSignificantSymbol reports whether symbols contains any entry
// besides plain whitespace filler. hasFunctionBody uses this instead
// of a raw token count so that a body consisting only of a (possibly
// already-lifted) doc comment still counts as empty, per spec.md §4.5.
func hasSignificantSymbol(symbols []Symbol) bool {
	_, ok := firstSignificantSymbol(symbols)
	return ok
}

// tokenRangeToPosition converts a half-open token-index range into the
// line/char position.Range the ast package works in, via the token
// stream's own flat offsets and the source's LineIndex.
func (p *Parser) tokenRangeToPosition(tr TokenRange) position.Range {
	startOff := p.offsetAt(tr.Start)
	endOff := startOff
	if tr.End > tr.Start {
		endOff = p.toks[tr.End-1].Range.End
	}
	return position.Range{Start: p.lines.AtOffset(startOff), End: p.lines.AtOffset(endOff)}
}

func (p *Parser) offsetAt(i int) int {
	if i < len(p.toks) {
		return p.toks[i].Range.Start
	}
	return p.sourceLen
}
