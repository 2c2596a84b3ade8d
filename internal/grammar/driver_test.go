package grammar

import (
	"strings"
	"testing"

	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/token"
)

// fakeDetector is a scripted grammar.Detector: each Next* method plays
// back one Directive per call from a fixed slice, in call order,
// ignoring the token it's handed (tests only need to control shape).
type fakeDetector struct {
	topLevel, classes, funcDecl, funcBody []Directive
	tlI, clI, fdI, fbI                    int

	commentBeforeFunction bool
	bodySplit             int
}

func (f *fakeDetector) Reset() { f.tlI, f.clI, f.fdI, f.fbI = 0, 0, 0, 0 }

func (f *fakeDetector) NextTopLevel(tok *token.Token) Directive {
	d := f.topLevel[f.tlI]
	f.tlI++
	return d
}
func (f *fakeDetector) NextClasses(tok *token.Token) Directive {
	d := f.classes[f.clI]
	f.clI++
	return d
}
func (f *fakeDetector) NextFunctionDeclaration(tok *token.Token) Directive {
	d := f.funcDecl[f.fdI]
	f.fdI++
	return d
}
func (f *fakeDetector) NextFunctionBody(tok *token.Token) Directive {
	d := f.funcBody[f.fbI]
	f.fbI++
	return d
}

func (f *fakeDetector) IsCommentBeforeFunction() bool { return f.commentBeforeFunction }

func (f *fakeDetector) SplitFunctionBody(toks []token.Token, rng TokenRange) int { return f.bodySplit }

func (f *fakeDetector) CreateNode(sym SymbolType, info interface{}, rng position.Range) ast.Node {
	label, _ := info.(string)
	switch sym {
	case References:
		return ast.NewReferences(rng, label, "local-file://"+label)
	case Classes:
		return ast.NewClasses(rng, nil, label)
	case Functions:
		return ast.NewFunctions(rng, label)
	case Attributes:
		return ast.NewAttributes(rng, label, nil)
	case Argument:
		return ast.NewArgument(rng, label, nil)
	case CommentSingleline:
		return ast.NewComments(rng, false, label)
	case CommentMultiline:
		return ast.NewComments(rng, true, label)
	}
	panic("fakeDetector: unexpected symbol " + string(sym))
}

// fakeTokens builds n contiguous one-character tokens over a source of
// n filler characters (no newlines), plus the LineIndex over it.
func fakeTokens(n int) ([]token.Token, *position.LineIndex, int) {
	src := strings.Repeat("x", n)
	toks := make([]token.Token, n)
	for i := 0; i < n; i++ {
		toks[i] = token.Token{Kind: token.Other, Text: "x", Range: token.Range{Start: i, End: i + 1}}
	}
	return toks, position.NewLineIndex(src), n
}

func TestParse_BareFunctionNoComment(t *testing.T) {
	toks, lines, n := fakeTokens(4)
	det := &fakeDetector{
		topLevel: []Directive{
			Keep(), Keep(), Keep(), Keep(),
			OneSymbol(Functions, "foo", &TokenRange{Start: 0, End: 4}),
		},
		funcDecl: []Directive{
			Keep(), Keep(),
			OneSymbol(Argument, "x", nil),
		},
		funcBody: []Directive{
			Keep(), Keep(),
			OneSymbol(StatementsFiller, nil, nil),
		},
		bodySplit: 2,
	}
	p := NewParser(det, toks, lines, n)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children()))
	}
	fg, ok := root.Children()[0].(*ast.FunctionGroups)
	if !ok {
		t.Fatalf("expected FunctionGroups, got %T", root.Children()[0])
	}
	if fg.HasDocComment() {
		t.Fatal("expected no doc comment")
	}
	fn := fg.Function()
	if fn == nil {
		t.Fatal("expected a Functions node")
	}
	if fn.FunctionDefinitionText() != "foo" {
		t.Fatalf("got function text %q", fn.FunctionDefinitionText())
	}
	if !fn.HasFunctionBody() {
		t.Fatal("expected HasFunctionBody true")
	}
	decl, ok := fn.Children()[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration child, got %T", fn.Children()[0])
	}
	args := decl.Arguments()
	if len(args) != 1 || args[0].ArgumentName() != "x" {
		t.Fatalf("unexpected arguments: %+v", args)
	}
}

func TestParse_CommentBeforeFunctionWrapsPreceding(t *testing.T) {
	toks, lines, n := fakeTokens(5)
	det := &fakeDetector{
		commentBeforeFunction: true,
		topLevel: []Directive{
			OneSymbol(CommentMultiline, "doc", nil),
			Keep(), Keep(), Keep(), Keep(),
			OneSymbol(Functions, "foo", &TokenRange{Start: 1, End: 5}),
		},
		funcDecl: []Directive{
			Keep(), Keep(),
			OneSymbol(Argument, "x", nil),
		},
		funcBody: []Directive{
			Keep(), Keep(),
			OneSymbol(StatementsFiller, nil, nil),
		},
		bodySplit: 3,
	}
	p := NewParser(det, toks, lines, n)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children()))
	}
	fg := root.Children()[0].(*ast.FunctionGroups)
	if !fg.HasDocComment() {
		t.Fatal("expected doc comment wrapped")
	}
	comment, ok := fg.Comment()
	if !ok || comment.CommentContents() != "doc" {
		t.Fatalf("unexpected comment: %+v", comment)
	}
	if fg.Function().FunctionDefinitionText() != "foo" {
		t.Fatal("wrong wrapped function")
	}
}

func TestParse_PythonLikeLiftsBodyDocCommentToFunctionGroups(t *testing.T) {
	toks, lines, n := fakeTokens(4)
	det := &fakeDetector{
		commentBeforeFunction: false,
		topLevel: []Directive{
			Keep(), Keep(), Keep(), Keep(),
			OneSymbol(Functions, "foo", &TokenRange{Start: 0, End: 4}),
		},
		funcDecl: []Directive{
			Keep(), Keep(),
			OneSymbol(Argument, "x", nil),
		},
		funcBody: []Directive{
			OneSymbol(CommentMultiline, "pydoc", nil),
			Keep(),
			OneSymbol(Filler, nil, nil),
		},
		bodySplit: 2,
	}
	p := NewParser(det, toks, lines, n)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fg := root.Children()[0].(*ast.FunctionGroups)
	if !fg.HasDocComment() {
		t.Fatal("a rank-0 body doc comment must be lifted onto the FunctionGroups")
	}
	comment, ok := fg.Comment()
	if !ok || comment.CommentContents() != "pydoc" {
		t.Fatalf("got comment %v, ok=%v", comment, ok)
	}
	fn := fg.Function()
	if fn.HasFunctionBody() {
		t.Fatal("a body consisting only of the lifted doc comment has no function body")
	}
	if len(fn.Children()) != 1 {
		t.Fatalf("expected only the FunctionDeclaration as Functions' child, got %d", len(fn.Children()))
	}
}

func TestParse_PythonLikeNonLeadingCommentStaysInBody(t *testing.T) {
	toks, lines, n := fakeTokens(5)
	det := &fakeDetector{
		commentBeforeFunction: false,
		topLevel: []Directive{
			Keep(), Keep(), Keep(), Keep(), Keep(),
			OneSymbol(Functions, "foo", &TokenRange{Start: 0, End: 5}),
		},
		funcDecl: []Directive{
			Keep(), Keep(),
			OneSymbol(Argument, "x", nil),
		},
		funcBody: []Directive{
			OneSymbol(CommentSingleline, "note", nil),
			Keep(),
			Keep(),
			OneSymbol(CommentMultiline, "notdoc", nil),
		},
		bodySplit: 2,
	}
	p := NewParser(det, toks, lines, n)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fg := root.Children()[0].(*ast.FunctionGroups)
	if fg.HasDocComment() {
		t.Fatal("a non-rank-0 body comment must not be lifted")
	}
	fn := fg.Function()
	if !fn.HasFunctionBody() {
		t.Fatal("expected HasFunctionBody true")
	}
	if len(fn.Children()) != 3 {
		t.Fatalf("expected FunctionDeclaration and both body comments as Functions' own children, got %d", len(fn.Children()))
	}
	first, ok := fn.Children()[1].(*ast.Comments)
	if !ok || first.CommentContents() != "note" {
		t.Fatalf("expected second child to be the Comments %q, got %v", "note", fn.Children()[1])
	}
	second, ok := fn.Children()[2].(*ast.Comments)
	if !ok || second.CommentContents() != "notdoc" {
		t.Fatalf("expected third child to be the Comments %q, got %v", "notdoc", fn.Children()[2])
	}
}

func TestParse_NonParsedResidueIsParsingError(t *testing.T) {
	toks, lines, n := fakeTokens(3)
	det := &fakeDetector{
		topLevel: []Directive{Keep(), Keep(), Keep(), Keep()},
	}
	p := NewParser(det, toks, lines, n)
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*diagnostics.ParsingError)
	if !ok {
		t.Fatalf("expected *diagnostics.ParsingError, got %T: %v", err, err)
	}
	if pe.Code != diagnostics.ErrP002 {
		t.Fatalf("expected ErrP002, got %s", pe.Code)
	}
}

func TestParse_DisallowedSymbolIsImplError(t *testing.T) {
	toks, lines, n := fakeTokens(2)
	det := &fakeDetector{
		topLevel: []Directive{
			Keep(), Keep(),
			OneSymbol(Argument, "bogus", nil),
		},
	}
	p := NewParser(det, toks, lines, n)
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	ie, ok := err.(*diagnostics.ImplError)
	if !ok {
		t.Fatalf("expected *diagnostics.ImplError, got %T: %v", err, err)
	}
	if ie.Code != diagnostics.ErrI007 {
		t.Fatalf("expected ErrI007, got %s", ie.Code)
	}
}

func TestParse_ZeroLengthCommitIsImplError(t *testing.T) {
	toks, lines, n := fakeTokens(1)
	det := &fakeDetector{
		topLevel: []Directive{
			OneSymbol(Filler, nil, nil),
			OneSymbol(Filler, nil, nil),
		},
	}
	p := NewParser(det, toks, lines, n)
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	ie, ok := err.(*diagnostics.ImplError)
	if !ok {
		t.Fatalf("expected *diagnostics.ImplError, got %T: %v", err, err)
	}
	if ie.Code != diagnostics.ErrI002 {
		t.Fatalf("expected ErrI002, got %s", ie.Code)
	}
}

func TestParse_ClassWithMethodRecurses(t *testing.T) {
	toks, lines, n := fakeTokens(6)
	det := &fakeDetector{
		topLevel: []Directive{
			Keep(), Keep(), Keep(), Keep(), Keep(), Keep(),
			OneSymbol(Classes, "Foo", &TokenRange{Start: 0, End: 6}),
		},
		classes: []Directive{
			Keep(),
			OneSymbol(Filler, nil, nil), // tokens [0,2) are the class header
			Keep(), Keep(), Keep(), Keep(),
			OneSymbol(Functions, "bar", &TokenRange{Start: 2, End: 6}),
		},
		funcDecl: []Directive{
			Keep(), Keep(),
			OneSymbol(Argument, "self", nil),
		},
		funcBody: []Directive{
			Keep(), Keep(),
			OneSymbol(StatementsFiller, nil, nil),
		},
		bodySplit: 4,
	}
	p := NewParser(det, toks, lines, n)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cls, ok := root.Children()[0].(*ast.Classes)
	if !ok {
		t.Fatalf("expected Classes, got %T", root.Children()[0])
	}
	if len(cls.Children()) != 1 {
		t.Fatalf("expected 1 method group, got %d", len(cls.Children()))
	}
	fg, ok := cls.Children()[0].(*ast.FunctionGroups)
	if !ok {
		t.Fatalf("expected FunctionGroups under Classes, got %T", cls.Children()[0])
	}
	if fg.Function().FunctionDefinitionText() != "bar" {
		t.Fatal("wrong method wrapped")
	}
}
