// Package lexer implements the character-fed lexical tokenizer
// framework of spec.md §4.4: a growing buffer fed one byte at a time,
// with each step classified by a language-specific Detector into an
// Action directive describing what, if anything, to do with the
// buffer. Concrete lexers (internal/pylex, internal/tslex) implement
// Detector; this package owns the buffer-splitting mechanics only.
package lexer

import (
	"fmt"

	"github.com/codeglass/structlens/internal/token"
)

// Action is the "symbol addition directive as a small algebra" DESIGN
// NOTES §9 calls for, with four constructors standing in for its four
// shapes instead of an options bag:
//
//   - Keep()                       — nil directive: keep accumulating.
//   - EmitAll(kind)                — emit the whole buffer, reset.
//   - EmitSplit(kind, tail, k)      — emit buffer[:len-k) as kind, then
//     buffer[len-k:] as tail; reset.
//   - EmitRetainSuffix(kind, k)     — emit buffer[:len-k) as kind; keep
//     buffer[len-k:] as the new buffer (the CONTINUATION case).
type Action struct {
	emit               bool
	kind               token.Kind
	tailKind           token.Kind
	numSplitCharacters int
	retainSuffix       bool
}

// Keep returns the nil directive: continue accumulating into the buffer.
func Keep() Action { return Action{} }

// EmitAll emits the entire buffer as one token of kind, then resets it.
func EmitAll(kind token.Kind) Action { return Action{emit: true, kind: kind} }

// EmitSplit emits buffer[:len-k) as kind, then buffer[len-k:] as tailKind,
// then resets the buffer. Requires the eventual buffer length to be
// >= k+1 and both pieces non-empty — enforced by Lexer.Feed.
func EmitSplit(kind, tailKind token.Kind, k int) Action {
	if k < 1 {
		panic("lexer: EmitSplit requires numSplitCharacters >= 1")
	}
	return Action{emit: true, kind: kind, tailKind: tailKind, numSplitCharacters: k}
}

// EmitRetainSuffix emits buffer[:len-k) as kind, then retains
// buffer[len-k:] as the new, not-yet-emitted buffer — "we now know the
// earlier part was one thing, but the tail is the start of something
// new" per spec.md §4.4.
func EmitRetainSuffix(kind token.Kind, k int) Action {
	if k < 1 {
		panic("lexer: EmitRetainSuffix requires numSplitCharacters >= 1")
	}
	return Action{emit: true, kind: kind, numSplitCharacters: k, retainSuffix: true}
}

// Detector is the per-language contract the base automaton drives.
type Detector interface {
	// Reset returns the detector to its well-defined initial state.
	Reset()
	// MatchNext is asked once per consumed byte, after it has been
	// appended to the automaton's buffer, and returns the directive
	// describing what to do with that buffer.
	MatchNext(ch byte) Action
	// MatchEndCharacter classifies whatever remains in the buffer once
	// the character feed is exhausted. It must return an Emit
	// directive (Keep() is invalid at end-of-stream).
	MatchEndCharacter() Action
}

// Unterminated is optionally implemented by a Detector that can detect
// it ended the stream still inside an open string or comment — e.g. the
// Python and TypeScript-like lexers. Tokenize checks for it after
// feeding the whole source and reports a true result through its
// what/bool return values.
type Unterminated interface {
	Unterminated() (what string, yes bool)
}

// Lexer is the base character-fed automaton. It owns the buffer and
// its flat-offset bookkeeping; a Detector only classifies.
type Lexer struct {
	detector Detector
	buf      []byte
	bufStart int
	ended    bool
	tokens   []token.Token
}

// New constructs a Lexer driving the given detector.
func New(detector Detector) *Lexer {
	return &Lexer{detector: detector}
}

// Reset returns the lexer (and its detector) to their initial state,
// ready to tokenize a new source from scratch.
func (l *Lexer) Reset() {
	l.detector.Reset()
	l.buf = l.buf[:0]
	l.bufStart = 0
	l.ended = false
	l.tokens = nil
}

// Feed consumes one byte of source.
func (l *Lexer) Feed(ch byte) {
	if l.ended {
		panic("lexer: Feed called after End")
	}
	l.buf = append(l.buf, ch)
	l.apply(l.detector.MatchNext(ch))
}

// End signals the character feed is exhausted and finalizes the last
// token(s) from whatever remains in the buffer. If the buffer is
// already empty (the source ended exactly on a prior emission), the
// detector is not consulted — there is nothing left to classify.
func (l *Lexer) End() {
	if l.ended {
		panic("lexer: End called twice")
	}
	if len(l.buf) == 0 {
		l.ended = true
		return
	}
	action := l.detector.MatchEndCharacter()
	if !action.emit {
		panic("lexer: MatchEndCharacter must return an emitting directive")
	}
	if action.retainSuffix {
		panic("lexer: MatchEndCharacter must not retain a suffix — there is no more input")
	}
	l.apply(action)
	l.ended = true
}

// Tokens returns every token emitted so far, in source order.
func (l *Lexer) Tokens() []token.Token { return l.tokens }

func (l *Lexer) apply(a Action) {
	if !a.emit {
		return
	}
	if a.numSplitCharacters == 0 {
		l.emit(a.kind, len(l.buf))
		return
	}
	k := a.numSplitCharacters
	if len(l.buf) < k+1 {
		panic(fmt.Sprintf("lexer: split of %d requires buffer len >= %d, got %d", k, k+1, len(l.buf)))
	}
	headLen := len(l.buf) - k
	l.emit(a.kind, headLen)
	if a.retainSuffix {
		return
	}
	l.emit(a.tailKind, len(l.buf))
}

// emit cuts buf[:uptoLen] off as a token, advancing bufStart, and
// leaves buf[uptoLen:] as the new buffer.
func (l *Lexer) emit(kind token.Kind, uptoLen int) {
	text := string(l.buf[:uptoLen])
	start := l.bufStart
	end := start + uptoLen
	l.tokens = append(l.tokens, token.Token{Kind: kind, Text: text, Range: token.Range{Start: start, End: end}})

	remaining := len(l.buf) - uptoLen
	tail := make([]byte, remaining)
	copy(tail, l.buf[uptoLen:])
	l.buf = tail
	l.bufStart = end
}

// Tokenize drives detector over the whole of source and returns the
// resulting token stream. If the detector implements Unterminated and
// reports true after End, Tokenize also returns its description and
// true (the tokens are still returned) — concrete lexers use this to
// report an unterminated string or comment at end of stream (spec.md
// §7, ErrL001).
func Tokenize(detector Detector, source string) ([]token.Token, string, bool) {
	l := New(detector)
	for i := 0; i < len(source); i++ {
		l.Feed(source[i])
	}
	l.End()
	if u, ok := detector.(Unterminated); ok {
		if what, yes := u.Unterminated(); yes {
			return l.Tokens(), what, true
		}
	}
	return l.Tokens(), "", false
}
