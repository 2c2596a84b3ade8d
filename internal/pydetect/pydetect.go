package pydetect

import (
	"strings"

	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/grammar"
	"github.com/codeglass/structlens/internal/matcher"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/token"
)

// ctxMode distinguishes what a runState's owning Next* method is
// allowed to recognize as the first token of a fresh statement.
type ctxMode int

const (
	modeTopLevel ctxMode = iota
	modeClasses
	modeBody
)

// runState is the line machine for one of TOP_LEVEL, CLASSES, or
// FUNCTION_BODY: it tracks indentation, bracket depth, and backslash
// continuation exactly as spec.md §4.6 describes, classifying the
// token run since the last commit into a SymbolType. TOP_LEVEL and
// CLASSES additionally track their own absolute token index so they
// can hand a FUNCTIONS/CLASSES symbol a parseRange the driver can
// recurse into.
type runState struct {
	siblingIndent int // indentation level this scanner's own statements live at
	braces        *matcher.BracesMatcher

	idx      int // absolute index of the next token this scanner will see
	runStart int // absolute index where the current run began

	indentCount  int
	afterNewline bool
	prevBackslash bool

	text   strings.Builder // full text of the run since the last commit
	header strings.Builder // just the header line, for CLASSES/FUNCTIONS definitionText
	headerClosed bool

	kind       grammar.SymbolType
	sawContent bool
}

func newRunState(siblingIndent int) *runState {
	return &runState{siblingIndent: siblingIndent, braces: pythonBraces()}
}

func pythonBraces() *matcher.BracesMatcher {
	return matcher.NewBracesMatcher([]matcher.Pair{{'(', ')'}, {'[', ']'}, {'{', '}'}})
}

func (s *runState) resetForEntry(start int) {
	s.idx = start
	s.runStart = start
	s.text.Reset()
	s.header.Reset()
	s.headerClosed = false
	s.kind = grammar.Filler
	s.sawContent = false
	s.afterNewline = true
	s.prevBackslash = false
	s.braces.Reset()
}

func (s *runState) resetRun() {
	s.runStart = s.idx
	s.text.Reset()
	s.header.Reset()
	s.headerClosed = false
	s.kind = grammar.Filler
	s.sawContent = false
	s.prevBackslash = false
}

func (s *runState) isBlockKind() bool {
	return s.kind == grammar.Classes || s.kind == grammar.Functions
}

func (s *runState) write(t string) {
	s.text.WriteString(t)
	if !s.headerClosed {
		s.header.WriteString(t)
	}
}

// NodeInfo carriers — one small struct per terminal shape, threaded
// from the directive that classified a run through to CreateNode.
type refInfo struct{ text, relPath string }
type classInfo struct{ text string }
type funcInfo struct{ text string }
type nameTypeInfo struct {
	name string
	typ  *string
}
type commentInfo struct{ text string }

// Detector implements grammar.Detector for Python.
type Detector struct {
	unit      int
	tabIndent bool

	top  *runState
	cls  *runState
	body *runState
	decl declState
}

// New builds a Detector for source, whose indentation unit has
// already been determined by DetectIndentUnit.
func New(unit int, tabIndent bool) *Detector {
	return &Detector{
		unit:      unit,
		tabIndent: tabIndent,
		top:       newRunState(0),
		cls:       newRunState(unit),
		body:      newRunState(0),
		decl:      newDeclState(),
	}
}

func (d *Detector) Reset() {
	d.top.resetForEntry(0)
	d.cls.resetForEntry(0)
	d.body.resetForEntry(0)
	d.resetDeclState()
}

func (d *Detector) IsCommentBeforeFunction() bool { return false }

func (d *Detector) NextTopLevel(tok *token.Token) grammar.Directive {
	return d.scan(d.top, modeTopLevel, tok)
}
func (d *Detector) NextClasses(tok *token.Token) grammar.Directive {
	return d.scan(d.cls, modeClasses, tok)
}
func (d *Detector) NextFunctionBody(tok *token.Token) grammar.Directive {
	return d.scan(d.body, modeBody, tok)
}

// scan is the shared line machine driving both TOP_LEVEL and CLASSES
// (and, in a degenerate form that never detects a block, FUNCTION_BODY):
// it accumulates a run, classifies it from its first real token, and
// commits at the first line break the run is not escaped from by an
// open bracket or a trailing backslash — except a run already
// classified as CLASSES or FUNCTIONS, which keeps accumulating through
// every line more indented than its own siblingIndent.
func (d *Detector) scan(s *runState, mode ctxMode, tok *token.Token) grammar.Directive {
	if tok == nil {
		return d.finishRun(s, mode)
	}

	s.idx++

	switch tok.Kind {
	case token.Spacing:
		s.write(tok.Text)
		if nl := strings.LastIndexByte(tok.Text, '\n'); nl >= 0 {
			s.indentCount = len(tok.Text) - nl - 1
			s.afterNewline = true
			if s.isBlockKind() {
				s.headerClosed = true
			}
			if s.braces.CurrentDepth() == 0 && !s.prevBackslash && s.sawContent {
				if s.isBlockKind() {
					if s.indentCount <= s.siblingIndent {
						return d.commitRun(s, mode)
					}
				} else {
					return d.commitRun(s, mode)
				}
			}
		}
		s.prevBackslash = false
		return grammar.Keep()

	case token.Brace:
		s.braces.Next(rune(tok.Text[0]))
		s.write(tok.Text)
		s.afterNewline = false
		s.sawContent = true
		s.prevBackslash = false
		return grammar.Keep()

	case token.SinglelineComment:
		if !s.sawContent {
			info := commentInfo{text: stripHash(tok.Text)}
			dir := grammar.OneSymbol(grammar.CommentSingleline, info, nil)
			s.resetRun()
			return dir
		}
		s.write(tok.Text)
		s.afterNewline = false
		s.sawContent = true
		s.prevBackslash = false
		return grammar.Keep()

	case token.MultilineCommentOrString:
		if !s.sawContent {
			s.kind = grammar.CommentMultiline
		} else if !s.isBlockKind() {
			s.kind = grammar.StatementsFiller
		}
		s.write(tok.Text)
		s.afterNewline = false
		s.sawContent = true
		s.prevBackslash = false
		return grammar.Keep()

	default: // token.String, token.Comma, token.Other
		fresh := s.afterNewline && !s.sawContent
		if fresh {
			d.classifyStart(s, mode, tok)
		} else if s.sawContent && s.kind == grammar.CommentMultiline && !s.isBlockKind() {
			s.kind = grammar.StatementsFiller
		}
		s.write(tok.Text)
		s.afterNewline = false
		s.sawContent = true
		s.prevBackslash = tok.Kind == token.Other && strings.HasSuffix(tok.Text, "\\")
		return grammar.Keep()
	}
}

// classifyStart assigns the kind of a fresh statement run from its
// first real token. FUNCTION_BODY's production never allows REFERENCES,
// CLASSES, or FUNCTIONS (spec.md §4.5), so a nested `def`/`class`/
// `import` inside a function body is deliberately not detected as one
// here — it flattens to STATEMENTS_FILLER like any other body
// statement, the same outcome as an unrecognized keyword.
func (d *Detector) classifyStart(s *runState, mode ctxMode, tok *token.Token) {
	if mode == modeBody {
		s.kind = grammar.StatementsFiller
		return
	}
	word := strings.TrimSpace(tok.Text)
	switch {
	case mode == modeTopLevel && (word == "from" || word == "import"):
		s.kind = grammar.References
	case word == "def":
		s.kind = grammar.Functions
	case mode == modeTopLevel && word == "class":
		s.kind = grammar.Classes
	case mode == modeClasses && word == "class":
		// the class's own header line, seen again at the start of its
		// CLASSES recursion: committed as inert filler.
		s.kind = grammar.Filler
	default:
		s.kind = grammar.StatementsFiller
	}
}

func (d *Detector) finishRun(s *runState, mode ctxMode) grammar.Directive {
	if s.idx <= s.runStart {
		return grammar.Keep()
	}
	return d.commitRun(s, mode)
}

func (d *Detector) commitRun(s *runState, mode ctxMode) grammar.Directive {
	d.finalizeKind(s, mode)
	dir := d.buildDirective(s)
	s.resetRun()
	return dir
}

// finalizeKind resolves the one classification spec.md §4.6 decides
// lazily, at commit time rather than at the first token: a CLASSES-scope
// statement containing an un-bracketed ':' and never upgraded to
// FUNCTIONS is an ATTRIBUTES declaration, not plain STATEMENTS_FILLER.
func (d *Detector) finalizeKind(s *runState, mode ctxMode) {
	if mode == modeClasses && s.kind == grammar.StatementsFiller {
		if strings.ContainsRune(s.text.String(), ':') {
			s.kind = grammar.Attributes
		}
	}
}

func (d *Detector) buildDirective(s *runState) grammar.Directive {
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
		name, typ := splitNameType(strings.TrimSpace(s.text.String()))
		return grammar.OneSymbol(grammar.Attributes, nameTypeInfo{name: name, typ: typ}, nil)

	case grammar.CommentMultiline:
		return grammar.OneSymbol(grammar.CommentMultiline, commentInfo{text: extractTripleQuoted(s.text.String())}, nil)

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
	panic("pydetect: unexpected symbol " + string(sym))
}

// SplitFunctionBody locates the ':' that closes a def header at
// bracket depth 0, per spec.md §4.5/§4.6. The body starts at the token
// immediately after it.
func (d *Detector) SplitFunctionBody(toks []token.Token, rng grammar.TokenRange) int {
	braces := pythonBraces()
	for i := rng.Start; i < rng.End; i++ {
		t := toks[i]
		if t.Kind == token.Brace {
			braces.Next(rune(t.Text[0]))
			continue
		}
		if braces.CurrentDepth() == 0 && strings.ContainsRune(t.Text, ':') {
			return i + 1
		}
	}
	return rng.End
}

func stripHash(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "#"))
}

func extractTripleQuoted(raw string) string {
	s := strings.TrimSpace(raw)
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return s
}

// splitNameType implements the shared ARGUMENT/ATTRIBUTES text split of
// spec.md §4.6: strip '\' line continuations, drop a '=' default, then
// split the remainder on its first ':' into name and type.
func splitNameType(raw string) (name string, typ *string) {
	s := strings.ReplaceAll(raw, "\\\n", "")
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "="); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, ":"); idx >= 0 {
		name = strings.TrimSpace(s[:idx])
		t := strings.TrimSpace(s[idx+1:])
		if t != "" {
			typ = &t
		}
		return name, typ
	}
	return s, nil
}

// resolveReference derives the local-file:// / environment:// path of
// spec.md §4.6 from an import statement's text: a leading-dots module
// resolves relative to the current package (one dot = here, each
// further dot climbs one directory); a dotless module resolves against
// the environment, with '.' separators becoming '/'.
func resolveReference(text string) string {
	fields := strings.Fields(text)
	var module string
	switch {
	case len(fields) >= 2 && fields[0] == "from":
		module = fields[1]
	case len(fields) >= 2 && fields[0] == "import":
		module = strings.TrimSuffix(fields[1], ",")
	}
	return modulePathToRelPath(module)
}

func modulePathToRelPath(module string) string {
	if module == "" {
		return "environment://"
	}
	leadingDots := 0
	for leadingDots < len(module) && module[leadingDots] == '.' {
		leadingDots++
	}
	rest := module[leadingDots:]
	if leadingDots > 0 {
		if rest == "" {
			return "local-file://"
		}
		prefix := strings.Repeat("../", leadingDots-1)
		return "local-file://" + prefix + strings.ReplaceAll(rest, ".", "/")
	}
	return "environment://" + strings.ReplaceAll(rest, ".", "/")
}
