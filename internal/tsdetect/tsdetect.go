// Package tsdetect implements grammar.Detector for TypeScript-like
// source, per spec.md §4.7: a bracket-depth statement machine with no
// reliance on indentation, plus a sequential phase tracker that
// recognizes a function's parameter list, optional return type, and
// curly body.
package tsdetect

import (
	"strings"

	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/grammar"
	"github.com/codeglass/structlens/internal/matcher"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/token"
)

type ctxMode int

const (
	modeTopLevel ctxMode = iota
	modeClasses
	modeBody
)

// funcPhase tracks a tentative or confirmed Functions run through its
// parameter list, optional return-type region, and curly body.
type funcPhase int

const (
	fpNone funcPhase = iota
	fpParams
	fpAfterParams
	fpReturnType
	fpBody
	fpDone
)

// runState is the statement machine for TOP_LEVEL, CLASSES, or (in a
// degenerate form that never detects a block) FUNCTION_BODY. general
// tracks ()[]{} together; curlyOnly tracks {} alone, per spec.md
// §4.7's two-matcher termination rule. typeDepth is a plain counter
// live only during fpReturnType, counting ()[]{}  and the '<'/'>'
// characters embedded in merged Other token text that a BracesMatcher
// cannot track on its own.
type runState struct {
	general   *matcher.BracesMatcher
	curlyOnly *matcher.BracesMatcher

	idx      int
	runStart int

	afterStart bool // true until the first non-spacing token of a fresh run
	sawExport  bool
	sawBrace   bool // a '(' or '{' has appeared since the run started

	text   strings.Builder
	header strings.Builder
	headerClosed bool

	kind       grammar.SymbolType
	sawContent bool

	phase         funcPhase
	typeDepth     int
	funcBaseDepth int // general depth recorded when the candidate '(' opened

	pendingHeader bool // true only for the very first run after resetForEntry

	// baseDepth is the general/curlyOnly depth that counts as "not
	// nested" for this scan. TOP_LEVEL's is 0; a CLASSES recursion's
	// own opening '{' is consumed (and its depth left un-popped) before
	// body scanning begins, so every body statement's true zero-point
	// sits one level above the matchers' raw depth 0.
	baseDepth int
}

func newRunState() *runState {
	return &runState{general: tsBraces(), curlyOnly: curlyBraces()}
}

func tsBraces() *matcher.BracesMatcher {
	return matcher.NewBracesMatcher([]matcher.Pair{{'(', ')'}, {'[', ']'}, {'{', '}'}})
}

func curlyBraces() *matcher.BracesMatcher {
	return matcher.NewBracesMatcher([]matcher.Pair{{'{', '}'}})
}

func (s *runState) resetForEntry(start int) {
	s.idx = start
	s.runStart = start
	s.general.Reset()
	s.curlyOnly.Reset()
	s.baseDepth = 0
	s.resetRun()
	s.pendingHeader = true
}

func (s *runState) resetRun() {
	s.runStart = s.idx
	s.text.Reset()
	s.header.Reset()
	s.headerClosed = false
	s.kind = grammar.Filler
	s.sawContent = false
	s.afterStart = true
	s.sawExport = false
	s.sawBrace = false
	s.phase = fpNone
	s.typeDepth = 0
	s.funcBaseDepth = 0
	s.pendingHeader = false
}

func (s *runState) write(t string) {
	s.text.WriteString(t)
	if !s.headerClosed {
		s.header.WriteString(t)
	}
}

type refInfo struct{ text, relPath string }
type classInfo struct{ text string }
type funcInfo struct{ text string }
type nameTypeInfo struct {
	name string
	typ  *string
}
type commentInfo struct{ text string }

// Detector implements grammar.Detector for TypeScript-like source.
type Detector struct {
	top  *runState
	cls  *runState
	body *runState
	decl declState
}

func New() *Detector {
	return &Detector{
		top:  newRunState(),
		cls:  newRunState(),
		body: newRunState(),
		decl: newDeclState(),
	}
}

func (d *Detector) Reset() {
	d.top.resetForEntry(0)
	d.cls.resetForEntry(0)
	d.body.resetForEntry(0)
	d.resetDeclState()
}

// IsCommentBeforeFunction reports true: a doc comment immediately
// preceding a function/class declaration belongs to it, the common
// convention this language's tooling (JSDoc, TSDoc) follows.
func (d *Detector) IsCommentBeforeFunction() bool { return true }

func (d *Detector) NextTopLevel(tok *token.Token) grammar.Directive {
	return d.scan(d.top, modeTopLevel, tok)
}
func (d *Detector) NextClasses(tok *token.Token) grammar.Directive {
	return d.scan(d.cls, modeClasses, tok)
}
func (d *Detector) NextFunctionBody(tok *token.Token) grammar.Directive {
	return d.scan(d.body, modeBody, tok)
}

func (d *Detector) scan(s *runState, mode ctxMode, tok *token.Token) grammar.Directive {
	if tok == nil {
		return d.finishRun(s, mode)
	}
	s.idx++

	switch tok.Kind {
	case token.Spacing:
		s.write(tok.Text)
		// general bracket depth already reflects every phase that is
		// genuinely nested (params, return-type brackets, body): a
		// terminator seen at depth 0 either ends a plain statement or
		// abandons a Functions candidate that opened a '(' but never
		// reached a matching '{' body (e.g. a parenthesized
		// expression, or an arrow function with a concise body) —
		// commitRun's own safety net downgrades the kind in that case.
		if s.sawContent && s.braceDepthZero() && strings.ContainsRune(tok.Text, '\n') {
			return d.commitRun(s, mode)
		}
		if s.sawContent && s.curlyOnly.CurrentDepth() == s.baseDepth && strings.ContainsRune(tok.Text, ';') {
			return d.commitRun(s, mode)
		}
		return grammar.Keep()

	case token.Brace:
		if mode == modeBody && rune(tok.Text[0]) == '}' && s.curlyOnly.CurrentDepth() == 0 {
			// FUNCTION_BODY's own token range runs from just after the
			// function's opening '{' through its closing '}' inclusive,
			// so this scan never sees a matching open for its very last
			// brace — tracking it through the bracket matchers the same
			// way nested body braces are tracked would underflow them.
			// Fed as plain content instead: the trailing spacing token
			// that follows still commits the final body statement.
			s.write(tok.Text)
			s.afterStart = false
			s.sawContent = true
			return grammar.Keep()
		}
		return d.handleBrace(s, mode, tok)

	case token.SinglelineComment:
		if !s.sawContent {
			info := commentInfo{text: stripSlashes(tok.Text)}
			dir := grammar.OneSymbol(grammar.CommentSingleline, info, nil)
			s.resetRun()
			return dir
		}
		s.write(tok.Text)
		s.sawContent = true
		return grammar.Keep()

	case token.MultilineCommentOrString:
		if !s.sawContent {
			s.kind = grammar.CommentMultiline
		} else if !s.isBlockKind() {
			s.kind = grammar.StatementsFiller
		}
		s.write(tok.Text)
		s.sawContent = true
		return grammar.Keep()

	default: // token.String, token.Comma, token.Other
		fresh := s.afterStart && !s.sawContent
		switch {
		case mode == modeBody && fresh:
			d.classifyStart(s, mode, tok)
		case mode == modeBody:
			if s.sawContent && s.kind == grammar.CommentMultiline && !s.isBlockKind() {
				s.kind = grammar.StatementsFiller
			}
		case s.phase == fpDone:
			// trailing content after a completed function's body,
			// before the statement terminator: no longer a bare
			// function declaration.
			s.kind = grammar.StatementsFiller
		case fresh:
			d.classifyStart(s, mode, tok)
		case s.phase == fpAfterParams:
			d.enterReturnTypeOrBody(s, tok)
		case s.phase == fpReturnType:
			d.trackTypeDepth(s, tok)
		case s.phase == fpNone && !s.sawBrace && (s.kind == grammar.StatementsFiller || s.sawExport):
			// a leading keyword after "export" (class/interface/
			// function/from), or a bare top-level ':' upgrading a
			// CLASSES-scope statement to ATTRIBUTES.
			d.classifyContinuation(s, mode, tok)
		}
		s.write(tok.Text)
		s.afterStart = false
		s.sawContent = true
		return grammar.Keep()
	}
}

// braceDepthZero reports whether the general matcher is at depth 0,
// i.e. this run is not inside any bracket right now.
func (s *runState) braceDepthZero() bool { return s.general.CurrentDepth() == s.baseDepth }

func (d *Detector) handleBrace(s *runState, mode ctxMode, tok *token.Token) grammar.Directive {
	ch := rune(tok.Text[0])
	before := s.general.CurrentDepth()
	depth := s.general.Next(ch)
	if ch == '{' || ch == '}' {
		s.curlyOnly.Next(ch)
	}
	s.sawBrace = true
	s.write(tok.Text)
	s.afterStart = false
	s.sawContent = true

	if mode == modeBody {
		return grammar.Keep()
	}

	if mode == modeClasses && s.pendingHeader && ch == '{' && before == s.baseDepth {
		// this run began at the same token the enclosing TOP_LEVEL scan
		// started its own Classes symbol at — it's the class's own
		// "class Foo {" header, not a body statement, and commits here
		// as inert filler so body scanning starts fresh right after it.
		// general/curlyOnly are left at depth (baseDepth+1): this brace
		// is never popped by a matching close the scan itself sees, so
		// every body statement's true zero-point sits one level higher
		// than the matchers' own depth 0 from here on.
		s.baseDepth = depth
		dir := grammar.OneSymbol(grammar.StatementsFiller, nil, nil)
		s.resetRun()
		return dir
	}

	if s.phase == fpDone {
		s.kind = grammar.StatementsFiller
		return grammar.Keep()
	}

	candidate := s.kind == grammar.Functions || s.kind == grammar.StatementsFiller || s.kind == grammar.Filler

	switch {
	case ch == '{' && s.kind == grammar.Classes && !s.headerClosed && before == s.baseDepth:
		s.headerClosed = true

	case ch == '(' && before == s.baseDepth && depth == s.baseDepth+1 && s.phase == fpNone && candidate:
		s.kind = grammar.Functions
		s.headerClosed = false
		s.phase = fpParams
		s.funcBaseDepth = before

	case ch == ')' && s.phase == fpParams && depth == s.funcBaseDepth:
		s.phase = fpAfterParams

	case ch == '{' && s.phase == fpAfterParams:
		s.headerClosed = true
		s.phase = fpBody

	case ch == '{' && s.phase == fpReturnType && s.typeDepth == 0:
		s.headerClosed = true
		s.phase = fpBody

	case ch == '}' && s.phase == fpBody && s.curlyOnly.CurrentDepth() == s.funcBaseDepth:
		s.phase = fpDone
	}

	return grammar.Keep()
}

// enterReturnTypeOrBody decides, on the first non-spacing token after
// a function's closing ')', whether it opens a return-type region (a
// leading ':') or is itself the body's '{' — handled in handleBrace
// already for the brace case, so this only fires for the ':' case.
func (d *Detector) enterReturnTypeOrBody(s *runState, tok *token.Token) {
	if strings.ContainsRune(tok.Text, ':') {
		s.phase = fpReturnType
		s.typeDepth = 0
		d.trackTypeDepth(s, tok)
	}
}

// trackTypeDepth updates the return-type-local bracket counter for
// '<'/'>' characters embedded in a merged Other token's text — these
// never get their own Brace token since tslex only special-cases
// ()[]{}} as brace characters.
func (d *Detector) trackTypeDepth(s *runState, tok *token.Token) {
	for _, ch := range tok.Text {
		switch ch {
		case '<':
			s.typeDepth++
		case '>':
			if s.typeDepth > 0 {
				s.typeDepth--
			}
		}
	}
}

func (s *runState) isBlockKind() bool {
	return s.kind == grammar.Classes || s.kind == grammar.Functions
}

// classifyStart fires on a fresh run's very first non-spacing token.
// "import"/"export"/"class"/"interface" only ever legally start a
// TOP_LEVEL statement — inside a CLASSES recursion this same method
// also runs once, on the class's own header token ("class" again, at
// the same index the enclosing TOP_LEVEL run started at), and must
// fall through to STATEMENTS_FILLER there so the header is skipped as
// inert filler rather than misread as a nested class. FUNCTION_BODY's
// production never allows REFERENCES, CLASSES, or FUNCTIONS either
// (spec.md §4.5), so a nested function/class/import declared inside a
// function body is deliberately not detected as one here — it
// flattens to STATEMENTS_FILLER like any other body statement.
func (d *Detector) classifyStart(s *runState, mode ctxMode, tok *token.Token) {
	if mode == modeBody {
		s.kind = grammar.StatementsFiller
		return
	}
	word := strings.TrimSpace(tok.Text)
	switch {
	case mode == modeTopLevel && word == "import":
		s.kind = grammar.References
	case mode == modeTopLevel && word == "export":
		s.sawExport = true
		s.kind = grammar.StatementsFiller
	case mode == modeTopLevel && (word == "class" || word == "interface"):
		s.kind = grammar.Classes
	case word == "function":
		s.kind = grammar.Functions
	case mode == modeClasses && strings.ContainsRune(tok.Text, ':'):
		s.kind = grammar.Attributes
	default:
		s.kind = grammar.StatementsFiller
	}
}

// classifyContinuation handles classification decisions that can't be
// made from a run's very first token alone: the keyword following a
// leading "export" (class/interface/function/from/default), and a
// CLASSES-scope statement's bare top-level ':' upgrading it to
// ATTRIBUTES once it's clear no bracket opened first.
func (d *Detector) classifyContinuation(s *runState, mode ctxMode, tok *token.Token) {
	word := strings.TrimSpace(tok.Text)
	switch {
	case mode == modeTopLevel && s.sawExport && (word == "class" || word == "interface"):
		s.kind = grammar.Classes
	case mode == modeTopLevel && s.sawExport && word == "function":
		s.kind = grammar.Functions
	case mode == modeTopLevel && s.sawExport && word == "from":
		s.kind = grammar.References
	case mode == modeTopLevel && s.sawExport && word == "default":
		// keep waiting for the keyword that follows "export default".
	case mode == modeClasses && s.kind == grammar.StatementsFiller && strings.ContainsRune(tok.Text, ':'):
		s.kind = grammar.Attributes
	}
}

func (d *Detector) finishRun(s *runState, mode ctxMode) grammar.Directive {
	if s.idx <= s.runStart {
		return grammar.Keep()
	}
	return d.commitRun(s, mode)
}

func (d *Detector) commitRun(s *runState, mode ctxMode) grammar.Directive {
	if s.kind == grammar.Functions && s.phase != fpDone {
		// the sequence never completed (e.g. an arrow-function-typed
		// const, or a call expression): not a real function definition.
		s.kind = grammar.StatementsFiller
	}
	dir := d.buildDirective(s, mode)
	s.resetRun()
	return dir
}

func (d *Detector) buildDirective(s *runState, mode ctxMode) grammar.Directive {
	switch s.kind {
	case grammar.Classes:
		text := strings.TrimSpace(s.header.String())
		pr := &grammar.TokenRange{Start: s.runStart, End: s.idx}
		d.cls.resetForEntry(s.runStart)
		return grammar.OneSymbol(grammar.Classes, classInfo{text: text}, pr)

	case grammar.Functions:
		text := strings.TrimSpace(s.header.String())
		pr := &grammar.TokenRange{Start: s.runStart, End: s.idx}
		return grammar.OneSymbol(grammar.Functions, funcInfo{text: text}, pr)

	case grammar.References:
		text := strings.TrimSpace(s.text.String())
		return grammar.OneSymbol(grammar.References, refInfo{text: text, relPath: resolveReference(text)}, nil)

	case grammar.Attributes:
		name, typ := parseVarDecl(strings.TrimSpace(s.text.String()))
		return grammar.OneSymbol(grammar.Attributes, nameTypeInfo{name: name, typ: typ}, nil)

	case grammar.CommentMultiline:
		return grammar.OneSymbol(grammar.CommentMultiline, commentInfo{text: extractBlockComment(s.text.String())}, nil)

	case grammar.StatementsFiller:
		return grammar.OneSymbol(grammar.StatementsFiller, nil, nil)

	default:
		return grammar.OneSymbol(grammar.Filler, nil, nil)
	}
}

func (d *Detector) CreateNode(sym grammar.SymbolType, info interface{}, rng position.Range) ast.Node {
	switch sym {
	case grammar.References:
		ri := info.(refInfo)
		return ast.NewReferences(rng, ri.text, ri.relPath)
	case grammar.Classes:
		ci := info.(classInfo)
		return ast.NewClasses(rng, nil, ci.text)
	case grammar.Functions:
		fi := info.(funcInfo)
		return ast.NewFunctions(rng, fi.text)
	case grammar.Attributes:
		nt := info.(nameTypeInfo)
		return ast.NewAttributes(rng, nt.name, nt.typ)
	case grammar.Argument:
		nt := info.(nameTypeInfo)
		return ast.NewArgument(rng, nt.name, nt.typ)
	case grammar.CommentSingleline:
		ci := info.(commentInfo)
		return ast.NewComments(rng, false, ci.text)
	case grammar.CommentMultiline:
		ci := info.(commentInfo)
		return ast.NewComments(rng, true, ci.text)
	}
	panic("tsdetect: unexpected symbol " + string(sym))
}

// SplitFunctionBody locates the '{' that opens a function's body at
// general bracket depth 1 (the depth reached right after the
// parameter list closes, whether or not a return-type region
// intervenes) — the body starts at the token right after it.
func (d *Detector) SplitFunctionBody(toks []token.Token, rng grammar.TokenRange) int {
	general := tsBraces()
	seenParams := false
	for i := rng.Start; i < rng.End; i++ {
		t := toks[i]
		if t.Kind != token.Brace {
			continue
		}
		ch := rune(t.Text[0])
		before := general.CurrentDepth()
		depth := general.Next(ch)
		if ch == '(' && before == 0 && depth == 1 {
			seenParams = true
		}
		if seenParams && ch == ')' && depth == 0 {
			seenParams = false
		}
		if ch == '{' && depth == 1 {
			return i + 1
		}
	}
	return rng.End
}

func stripSlashes(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimRight(s, "\n"), "//"))
}

func extractBlockComment(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	s = strings.TrimPrefix(s, "*") // a "/**" doc-comment opener
	return strings.TrimSpace(s)
}

// resolveReference parses the final string literal out of an import
// or export-from statement's text and classifies its path scheme per
// spec.md §4.7.
func resolveReference(text string) string {
	start := strings.IndexAny(text, `"'`)
	if start < 0 {
		return "environment://"
	}
	quote := text[start]
	end := strings.IndexByte(text[start+1:], quote)
	if end < 0 {
		return "environment://"
	}
	path := text[start+1 : start+1+end]
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return "local-file://" + path
	}
	return "environment://" + path
}
