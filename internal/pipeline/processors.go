package pipeline

import (
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/grammar"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/pydetect"
	"github.com/codeglass/structlens/internal/pylex"
	"github.com/codeglass/structlens/internal/tsdetect"
	"github.com/codeglass/structlens/internal/tslex"

	"github.com/codeglass/structlens/internal/config"
)

// LexerProcessor tokenizes ctx.Source per ctx.Language, populating
// ctx.Tokens and ctx.TokenStream. An unterminated string/comment at
// end of input becomes a positioned ParsingError appended to
// ctx.Errors; ctx.Tokens is left nil so ParserProcessor knows to skip.
type LexerProcessor struct{}

func (LexerProcessor) Process(ctx *Context) *Context {
	lines := position.NewLineIndex(ctx.Source)

	switch ctx.Language {
	case config.LanguagePython:
		t, err := pylex.Tokenize(ctx.Source)
		if err != nil {
			ue := err.(*pylex.UnterminatedError)
			idx := lines.AtOffset(ue.Offset)
			ctx.Errors = append(ctx.Errors, diagnostics.NewParsingError(diagnostics.PhaseLexer, diagnostics.ErrL001, position.Range{Start: idx, End: idx}, ue.What).WithFile(ctx.FilePath))
			return ctx
		}
		ctx.Tokens = t
	case config.LanguageTypeScript:
		t, err := tslex.Tokenize(ctx.Source)
		if err != nil {
			ue := err.(*tslex.UnterminatedError)
			idx := lines.AtOffset(ue.Offset)
			ctx.Errors = append(ctx.Errors, diagnostics.NewParsingError(diagnostics.PhaseLexer, diagnostics.ErrL001, position.Range{Start: idx, End: idx}, ue.What).WithFile(ctx.FilePath))
			return ctx
		}
		ctx.Tokens = t
	}
	ctx.TokenStream = newBufferedStream(ctx.Tokens)
	return ctx
}

// ParserProcessor drives grammar.Parser over ctx.Tokens with the
// detector matching ctx.Language, populating ctx.AST. A no-op if
// LexerProcessor already failed (ctx.Tokens is nil).
type ParserProcessor struct{}

func (ParserProcessor) Process(ctx *Context) *Context {
	if ctx.Tokens == nil {
		return ctx
	}
	lines := position.NewLineIndex(ctx.Source)

	var detector grammar.Detector
	switch ctx.Language {
	case config.LanguagePython:
		unit, tabIndent, err := pydetect.DetectIndentUnit(ctx.Source)
		if err != nil {
			ctx.Errors = append(ctx.Errors, withFileIfParsing(err, ctx.FilePath))
			return ctx
		}
		detector = pydetect.New(unit, tabIndent)
	case config.LanguageTypeScript:
		detector = tsdetect.New()
	default:
		return ctx
	}

	p := grammar.NewParser(detector, ctx.Tokens, lines, len(ctx.Source))
	root, err := p.Parse()
	if err != nil {
		ctx.Errors = append(ctx.Errors, withFileIfParsing(err, ctx.FilePath))
		return ctx
	}
	ctx.AST = root
	return ctx
}

func withFileIfParsing(err error, file string) error {
	if pe, ok := err.(*diagnostics.ParsingError); ok {
		return pe.WithFile(file)
	}
	return err
}
