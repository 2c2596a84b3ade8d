// Package tslex implements the TypeScript-like concrete lexer of
// spec.md §4.4: a lexer.Detector that layers a streaming
// matcher.StringExpressionMatcher over "//" / "/*" / "*/" detection on
// top of the same buffer-splitting mechanics pylex uses.
package tslex

import (
	"github.com/codeglass/structlens/internal/lexer"
	"github.com/codeglass/structlens/internal/matcher"
	"github.com/codeglass/structlens/internal/token"
)

type mode int

const (
	modeNone mode = iota
	modeSpacing
	modeOther
	modeSingleLineComment
	modeMultilineComment
	modeString // single-quote, double-quote, or backtick, keyed by quoteChar
	modeEqualsPending
)

const (
	keyLineComment      = "line"
	keyMultilineStart   = "start"
	keyMultilineEnd     = "end"
)

// Detector is the TypeScript-like lexer's lexer.Detector implementation.
type Detector struct {
	mode         mode
	quoteChar    byte
	escape       bool
	delimiters   *matcher.StringExpressionMatcher[string]
	otherRunLen  int // bytes accumulated in the current modeOther run
	unterminated string
}

// New returns a ready-to-use TypeScript-like lexer detector.
func New() *Detector {
	return &Detector{
		delimiters: matcher.NewStringExpressionMatcher(map[string]string{
			keyLineComment:    "//",
			keyMultilineStart: "/*",
			keyMultilineEnd:   "*/",
		}),
	}
}

func (d *Detector) Reset() {
	d.mode = modeNone
	d.quoteChar = 0
	d.escape = false
	d.unterminated = ""
	d.delimiters.Reset()
}

func isSpacingChar(ch byte) bool { return ch == ' ' || ch == '\t' || ch == '\n' || ch == ';' }

func isBraceChar(ch byte) bool {
	switch ch {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

func isQuoteChar(ch byte) bool { return ch == '\'' || ch == '"' || ch == '`' }

// isOtherPlainChar reports whether ch continues a plain OTHER run. '/'
// and '*' stay plain here — their role in "//" / "/*" / "*/" is decided
// by the streaming delimiter matcher, not by exclusion.
func isOtherPlainChar(ch byte) bool {
	return !isSpacingChar(ch) && !isQuoteChar(ch) && !isBraceChar(ch) && ch != ',' && ch != '='
}

// classifyStartMode decides what kind of run ch begins, without
// emitting anything — ch is the sole byte of a fresh buffer. Entering
// modeOther primes the delimiter matcher with ch itself: "//" and "/*"
// are two bytes long, so the matcher must see a run's first byte too,
// not just the ones that follow it.
func (d *Detector) classifyStartMode(ch byte) {
	switch {
	case isSpacingChar(ch):
		d.mode = modeSpacing
	case isQuoteChar(ch):
		d.mode = modeString
		d.quoteChar = ch
		d.escape = false
	case ch == '=':
		d.mode = modeEqualsPending
	default:
		d.mode = modeOther
		d.otherRunLen = 1
		d.delimiters.Reset()
		d.delimiters.Next(ch)
	}
}

func (d *Detector) start(ch byte) lexer.Action {
	if isBraceChar(ch) {
		d.mode = modeNone
		return lexer.EmitAll(token.Brace)
	}
	if ch == ',' {
		d.mode = modeNone
		return lexer.EmitAll(token.Comma)
	}
	d.classifyStartMode(ch)
	return lexer.Keep()
}

// enterCommentMode switches into a comment mode after the delimiter
// matcher completed a 2-byte pattern ("//" or "/*"). If those were the
// whole of the Other run so far, there is no prefix left to emit —
// just keep accumulating under the new mode. Otherwise the prefix
// before the delimiter is a real Other token and splits off.
func (d *Detector) enterCommentMode(next mode) lexer.Action {
	d.mode = next
	d.delimiters.Reset()
	if d.otherRunLen == 2 {
		return lexer.Keep()
	}
	return lexer.EmitRetainSuffix(token.Other, 2)
}

func (d *Detector) closeRunAndStart(oldKind token.Kind, ch byte) lexer.Action {
	if isBraceChar(ch) {
		d.mode = modeNone
		return lexer.EmitSplit(oldKind, token.Brace, 1)
	}
	if ch == ',' {
		d.mode = modeNone
		return lexer.EmitSplit(oldKind, token.Comma, 1)
	}
	d.classifyStartMode(ch)
	return lexer.EmitRetainSuffix(oldKind, 1)
}

func (d *Detector) MatchNext(ch byte) lexer.Action {
	switch d.mode {
	case modeNone:
		return d.start(ch)

	case modeSpacing:
		if isSpacingChar(ch) {
			return lexer.Keep()
		}
		return d.closeRunAndStart(token.Spacing, ch)

	case modeOther:
		if !isOtherPlainChar(ch) {
			return d.closeRunAndStart(token.Other, ch)
		}
		d.otherRunLen++
		if key, ok := d.delimiters.Next(ch); ok {
			switch key {
			case keyLineComment:
				return d.enterCommentMode(modeSingleLineComment)
			case keyMultilineStart:
				return d.enterCommentMode(modeMultilineComment)
			}
			// a spurious "*/" completion while scanning plain code
			// (e.g. "a*/b") carries no meaning outside a multi-line
			// comment; ignore it.
		}
		return lexer.Keep()

	case modeSingleLineComment:
		if ch == '\n' {
			return d.closeRunAndStart(token.SinglelineComment, ch)
		}
		return lexer.Keep()

	case modeMultilineComment:
		if key, ok := d.delimiters.Next(ch); ok && key == keyMultilineEnd {
			d.mode = modeNone
			d.delimiters.Reset()
			return lexer.EmitAll(token.MultilineCommentOrString)
		}
		return lexer.Keep()

	case modeString:
		if d.escape {
			d.escape = false
			return lexer.Keep()
		}
		if ch == '\\' {
			d.escape = true
			return lexer.Keep()
		}
		if ch == d.quoteChar {
			d.mode = modeNone
			return lexer.EmitAll(token.String)
		}
		return lexer.Keep()

	case modeEqualsPending:
		if ch == '>' {
			d.mode = modeNone
			return lexer.EmitAll(token.Other)
		}
		return d.closeRunAndStart(token.Other, ch)
	}
	panic("tslex: unreachable mode")
}

func (d *Detector) MatchEndCharacter() lexer.Action {
	switch d.mode {
	case modeSpacing:
		return lexer.EmitAll(token.Spacing)
	case modeOther, modeEqualsPending:
		return lexer.EmitAll(token.Other)
	case modeSingleLineComment:
		return lexer.EmitAll(token.SinglelineComment)
	case modeMultilineComment:
		d.unterminated = "multi-line comment"
		return lexer.EmitAll(token.MultilineCommentOrString)
	case modeString:
		d.unterminated = "string"
		return lexer.EmitAll(token.String)
	default:
		return lexer.EmitAll(token.Other)
	}
}

// Unterminated reports whether the stream ended still inside an open
// string or multi-line comment, per spec.md §7's ErrL001.
func (d *Detector) Unterminated() (string, bool) {
	return d.unterminated, d.unterminated != ""
}

// UnterminatedError mirrors pylex.UnterminatedError for the
// TypeScript-like lexer.
type UnterminatedError struct {
	What   string
	Offset int
}

func (e *UnterminatedError) Error() string {
	return "tslex: unterminated " + e.What + " at end of file"
}

// Tokenize lexes a complete TypeScript-like source into its token stream.
func Tokenize(source string) ([]token.Token, error) {
	toks, what, bad := lexer.Tokenize(New(), source)
	if bad {
		offset := len(source)
		if n := len(toks); n > 0 {
			offset = toks[n-1].Range.Start
		}
		return toks, &UnterminatedError{What: what, Offset: offset}
	}
	return toks, nil
}
