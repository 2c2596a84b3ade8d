// Package pylex implements the Python concrete lexer of spec.md §4.4:
// a lexer.Detector tracking quote/comment state flags over the
// character-fed lexer.Lexer framework.
package pylex

import (
	"github.com/codeglass/structlens/internal/lexer"
	"github.com/codeglass/structlens/internal/token"
)

type mode int

const (
	modeNone mode = iota
	modeSpacing
	modeOther
	modeSingleLineComment
	modeQuoteCounting // 1 or 2 quote chars seen, deciding empty-string vs triple
	modeString        // inside a single/double-quoted string
	modeTripleQuote   // inside a triple-quoted string or comment
)

// Detector is the Python lexer's lexer.Detector implementation.
type Detector struct {
	mode          mode
	quoteChar     byte
	quoteCount    int // while counting consecutive opening quote chars
	quoteCloseRun int // while inside a triple-quote, consecutive matching chars seen so far
	escape        bool
	unterminated  string
}

// New returns a ready-to-use Python lexer detector.
func New() *Detector { return &Detector{} }

func (d *Detector) Reset() {
	d.mode = modeNone
	d.quoteChar = 0
	d.quoteCount = 0
	d.quoteCloseRun = 0
	d.escape = false
	d.unterminated = ""
}

func isSpacingChar(ch byte) bool { return ch == ' ' || ch == '\t' || ch == '\n' }

func isBraceChar(ch byte) bool {
	switch ch {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

func isOtherPlainChar(ch byte) bool {
	return !isSpacingChar(ch) && ch != '#' && ch != '\'' && ch != '"' && !isBraceChar(ch) && ch != ','
}

// classifyStartMode decides what kind of run ch begins, without
// emitting anything — ch is the sole byte of a fresh buffer.
func (d *Detector) classifyStartMode(ch byte) {
	switch {
	case isSpacingChar(ch):
		d.mode = modeSpacing
	case ch == '#':
		d.mode = modeSingleLineComment
	case ch == '\'' || ch == '"':
		d.mode = modeQuoteCounting
		d.quoteChar = ch
		d.quoteCount = 1
		d.escape = false
	default:
		d.mode = modeOther
	}
}

// start handles the very first character of a fresh buffer (mode ==
// modeNone): braces and commas are one-character tokens with nothing
// to retain, so they emit immediately.
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

// closeRunAndStart ends the run accumulated under oldKind because ch
// does not belong to it. A brace/comma ch is itself a complete
// one-character token, so the two pieces split and both emit; any
// other ch becomes the retained start of the next run.
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
		if isOtherPlainChar(ch) {
			return lexer.Keep()
		}
		return d.closeRunAndStart(token.Other, ch)

	case modeSingleLineComment:
		if ch == '\n' {
			return d.closeRunAndStart(token.SinglelineComment, ch)
		}
		return lexer.Keep()

	case modeQuoteCounting:
		if ch == d.quoteChar {
			d.quoteCount++
			if d.quoteCount == 3 {
				d.mode = modeTripleQuote
				d.quoteCloseRun = 0
				d.escape = false
			}
			return lexer.Keep()
		}
		if d.quoteCount == 1 {
			d.mode = modeString
			d.escape = ch == '\\'
			return lexer.Keep()
		}
		// quoteCount == 2: "" or '' just closed as an empty string.
		return d.closeRunAndStart(token.String, ch)

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

	case modeTripleQuote:
		if d.escape {
			d.escape = false
			d.quoteCloseRun = 0
			return lexer.Keep()
		}
		if ch == '\\' {
			d.escape = true
			d.quoteCloseRun = 0
			return lexer.Keep()
		}
		if ch == d.quoteChar {
			d.quoteCloseRun++
			if d.quoteCloseRun == 3 {
				d.mode = modeNone
				return lexer.EmitAll(token.MultilineCommentOrString)
			}
			return lexer.Keep()
		}
		d.quoteCloseRun = 0
		return lexer.Keep()
	}
	panic("pylex: unreachable mode")
}

func (d *Detector) MatchEndCharacter() lexer.Action {
	switch d.mode {
	case modeSpacing:
		return lexer.EmitAll(token.Spacing)
	case modeOther:
		return lexer.EmitAll(token.Other)
	case modeSingleLineComment:
		return lexer.EmitAll(token.SinglelineComment)
	case modeQuoteCounting:
		if d.quoteCount < 2 {
			d.unterminated = "string"
		}
		return lexer.EmitAll(token.String)
	case modeString:
		d.unterminated = "string"
		return lexer.EmitAll(token.String)
	case modeTripleQuote:
		d.unterminated = "triple-quoted string or comment"
		return lexer.EmitAll(token.MultilineCommentOrString)
	default:
		return lexer.EmitAll(token.Other)
	}
}

// Unterminated reports whether the stream ended still inside an open
// string (or triple-quoted construct), per spec.md §7's ErrL001.
func (d *Detector) Unterminated() (string, bool) {
	return d.unterminated, d.unterminated != ""
}

// UnterminatedError reports that the source ended while still inside
// an open string or triple-quoted construct — the lexer itself only
// knows the flat byte Offset; callers with access to the full source
// (internal/pipeline) convert it into a diagnostics.ParsingError with
// a proper line/char position.
type UnterminatedError struct {
	What   string
	Offset int
}

func (e *UnterminatedError) Error() string {
	return "pylex: unterminated " + e.What + " at end of file"
}

// Tokenize lexes a complete Python source into its token stream.
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
