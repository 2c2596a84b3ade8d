package tsdetect

import (
	"strings"

	"github.com/codeglass/structlens/internal/grammar"
	"github.com/codeglass/structlens/internal/matcher"
	"github.com/codeglass/structlens/internal/token"
)

// declPhase tracks where NextFunctionDeclaration is within
// "function name<T>( args ): ReturnType {": everything before the
// outer '(' is FILLER, everything between the outer parens is
// ARGUMENT text split on top-level commas, everything from the
// matching ')' onward is FILLER again.
type declPhase int

const (
	declBeforeParen declPhase = iota
	declInArgs
	declAfterParen
)

type declState struct {
	braces     *matcher.BracesMatcher
	phase      declPhase
	angleDepth int
	buf        strings.Builder
}

func newDeclState() declState {
	return declState{braces: tsBraces()}
}

func (d *Detector) resetDeclState() {
	d.decl.braces.Reset()
	d.decl.phase = declBeforeParen
	d.decl.angleDepth = 0
	d.decl.buf.Reset()
}

// NextFunctionDeclaration splits a function header into ARGUMENT
// symbols by commas at bracket depth 1, per spec.md §4.7 — a comma
// inside a nested '[]'/'()'/'{}' (a default array literal, an object
// default) or inside a generic type's '<>' (a Map<string, number>
// parameter type) stays part of the same argument.
func (d *Detector) NextFunctionDeclaration(tok *token.Token) grammar.Directive {
	s := &d.decl

	if tok == nil {
		pending := s.buf.Len() > 0
		d.resetDeclState()
		if pending {
			return grammar.OneSymbol(grammar.Filler, nil, nil)
		}
		return grammar.Keep()
	}

	s.buf.WriteString(tok.Text)

	if tok.Kind == token.Brace {
		ch := rune(tok.Text[0])
		before := s.braces.CurrentDepth()
		depth := s.braces.Next(ch)

		if s.phase == declBeforeParen && ch == '(' && before == 0 && depth == 1 {
			s.phase = declInArgs
			d.resetDeclBuf(s)
			return grammar.OneSymbol(grammar.Filler, nil, nil)
		}
		if s.phase == declInArgs && ch == ')' && depth == 0 {
			s.phase = declAfterParen
			return d.commitFinalArgument(s, tok)
		}
		return grammar.Keep()
	}

	if s.phase == declInArgs && s.braces.CurrentDepth() == 1 {
		d.trackAngleDepth(s, tok)
	}

	if s.phase == declInArgs && tok.Kind == token.Comma &&
		s.braces.CurrentDepth() == 1 && s.angleDepth == 0 {
		return d.commitArgument(s, tok)
	}

	return grammar.Keep()
}

func (d *Detector) trackAngleDepth(s *declState, tok *token.Token) {
	for i := 0; i < len(tok.Text); i++ {
		switch tok.Text[i] {
		case '<':
			s.angleDepth++
		case '>':
			if s.angleDepth > 0 {
				s.angleDepth--
			}
		}
	}
}

func (d *Detector) resetDeclBuf(s *declState) {
	// phase and braces survive; only the text buffer (and the
	// per-argument angle depth) resets between FILLER/ARGUMENT
	// pieces within one declaration scan.
	s.buf.Reset()
	s.angleDepth = 0
}

func (d *Detector) commitArgument(s *declState, sep *token.Token) grammar.Directive {
	argText := strings.TrimSuffix(s.buf.String(), sep.Text)
	name, typ := parseVarDecl(argText)
	dir := grammar.SplitTwo(grammar.Argument, nameTypeInfo{name: name, typ: typ}, nil, grammar.Filler, 1, nil, nil)
	d.resetDeclBuf(s)
	return dir
}

func (d *Detector) commitFinalArgument(s *declState, closeParen *token.Token) grammar.Directive {
	argText := strings.TrimSuffix(s.buf.String(), closeParen.Text)
	if strings.TrimSpace(argText) == "" {
		dir := grammar.OneSymbol(grammar.Filler, nil, nil)
		d.resetDeclBuf(s)
		return dir
	}
	name, typ := parseVarDecl(argText)
	dir := grammar.SplitTwo(grammar.Argument, nameTypeInfo{name: name, typ: typ}, nil, grammar.Filler, 1, nil, nil)
	d.resetDeclBuf(s)
	return dir
}
