package pydetect

import (
	"testing"

	"github.com/codeglass/structlens/internal/ast"
)

func TestDetectIndentUnit_FourSpaces(t *testing.T) {
	src := "def foo():\n    return 1\n\n\ndef bar():\n    if True:\n        return 2\n"
	unit, tabs, err := DetectIndentUnit(src)
	if err != nil {
		t.Fatalf("DetectIndentUnit: %v", err)
	}
	if tabs {
		t.Fatal("expected space indentation")
	}
	if unit != 4 {
		t.Fatalf("got unit %d, want 4", unit)
	}
}

func TestDetectIndentUnit_TwoSpaces(t *testing.T) {
	src := "class C:\n  def f(self):\n    pass\n"
	unit, tabs, err := DetectIndentUnit(src)
	if err != nil {
		t.Fatalf("DetectIndentUnit: %v", err)
	}
	if tabs {
		t.Fatal("expected space indentation")
	}
	if unit != 2 {
		t.Fatalf("got unit %d, want 2", unit)
	}
}

func TestDetectIndentUnit_Tabs(t *testing.T) {
	src := "def foo():\n\treturn 1\n"
	unit, tabs, err := DetectIndentUnit(src)
	if err != nil {
		t.Fatalf("DetectIndentUnit: %v", err)
	}
	if !tabs {
		t.Fatal("expected tab indentation")
	}
	if unit != 1 {
		t.Fatalf("got unit %d, want 1", unit)
	}
}

func TestDetectIndentUnit_MixedTabsAndSpacesIsFatal(t *testing.T) {
	src := "def foo():\n \tpass\n"
	_, _, err := DetectIndentUnit(src)
	if err == nil {
		t.Fatal("expected an error for mixed tabs/spaces")
	}
}

func TestSplitNameType(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantType string
		hasType  bool
	}{
		{"x", "x", "", false},
		{"x: int", "x", "int", true},
		{"x=5", "x", "", false},
		{"x: int = 5", "x", "int", true},
		{"x: Dict[str, int]", "x", "Dict[str, int]", true},
	}
	for _, c := range cases {
		name, typ := splitNameType(c.in)
		if name != c.wantName {
			t.Errorf("splitNameType(%q) name = %q, want %q", c.in, name, c.wantName)
		}
		if c.hasType {
			if typ == nil || *typ != c.wantType {
				t.Errorf("splitNameType(%q) type = %v, want %q", c.in, typ, c.wantType)
			}
		} else if typ != nil {
			t.Errorf("splitNameType(%q) type = %q, want none", c.in, *typ)
		}
	}
}

func TestResolveReference(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"import os", "environment://os"},
		{"from foo.bar import baz", "environment://foo/bar"},
		{"from . import x", "local-file://"},
		{"from .sibling import y", "local-file://sibling"},
		{"from ..pkg.mod import z", "local-file://../pkg/mod"},
	}
	for _, c := range cases {
		got := resolveReference(c.in)
		if got != c.want {
			t.Errorf("resolveReference(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripHashAndTripleQuoted(t *testing.T) {
	if got := stripHash("# hello"); got != "hello" {
		t.Errorf("stripHash = %q", got)
	}
	if got := extractTripleQuoted(`"""doc string"""`); got != "doc string" {
		t.Errorf("extractTripleQuoted = %q", got)
	}
}

// TestParse_ClassMethodDocstringIsLiftedToFunctionGroups runs a real
// Detector through grammar.NewParser over a class whose only method
// opens with a docstring, and checks the method's FunctionGroups ends
// up with the docstring as a Comments sibling ahead of Functions,
// rather than nested inside the method's own body.
func TestParse_ClassMethodDocstringIsLiftedToFunctionGroups(t *testing.T) {
	src := "class A:\n    x: int = 1\n    def m(self, n: int) -> bool:\n        \"\"\"doc\"\"\"\n        return n > 0\n"
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected one top-level Classes node, got %d", len(root.Children()))
	}
	cls, ok := root.Children()[0].(*ast.Classes)
	if !ok {
		t.Fatalf("expected *ast.Classes, got %T", root.Children()[0])
	}
	var fg *ast.FunctionGroups
	for _, c := range cls.Children() {
		if g, ok := c.(*ast.FunctionGroups); ok {
			fg = g
		}
	}
	if fg == nil {
		t.Fatal("expected a FunctionGroups child under the class")
	}
	if !fg.HasDocComment() {
		t.Fatal("method docstring must be lifted onto the FunctionGroups, not left in the function body")
	}
	comment, ok := fg.Comment()
	if !ok || comment.CommentContents() != "doc" {
		t.Fatalf("got comment %v, ok=%v", comment, ok)
	}
	fn := fg.Function()
	if fn == nil {
		t.Fatal("expected a Functions child")
	}
	if !fn.HasFunctionBody() {
		t.Fatal("the method's body still has a real return statement after the docstring is lifted")
	}
}

// TestParse_DocstringOnlyBodyHasNoFunctionBody covers the stub-method
// shape called out in review: a function whose body is only a
// docstring has hasFunctionBody == false once that docstring is
// lifted out, not true merely because the docstring's own tokens are
// non-empty.
func TestParse_DocstringOnlyBodyHasNoFunctionBody(t *testing.T) {
	src := "def f(self):\n    \"\"\"just a docstring\"\"\"\n"
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected one top-level FunctionGroups, got %d", len(root.Children()))
	}
	fg, ok := root.Children()[0].(*ast.FunctionGroups)
	if !ok {
		t.Fatalf("expected *ast.FunctionGroups, got %T", root.Children()[0])
	}
	if !fg.HasDocComment() {
		t.Fatal("expected the docstring lifted onto the FunctionGroups")
	}
	fn := fg.Function()
	if fn == nil {
		t.Fatal("expected a Functions child")
	}
	if fn.HasFunctionBody() {
		t.Fatal("a body consisting only of its docstring has no function body")
	}
}
