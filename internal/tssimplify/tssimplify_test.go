package tssimplify

import (
	"strings"
	"testing"
)

func render(t *testing.T, src, indent string) string {
	t.Helper()
	toks, err := Flatten(src, indent)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func TestFlatten_ClassWithLeadingDocCommentAndMethod(t *testing.T) {
	src := "class Foo {\n  /** doc */\n  bar(x: number): void {\n    return;\n  }\n}\n"
	got := render(t, src, "")
	want := "class Foo {\n    /* doc */\n    bar(x: number): void { … }\n}\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFlatten_TopLevelFunctionWithBody(t *testing.T) {
	src := "function foo(a: number): string {\n  return \"x\";\n}\n"
	got := render(t, src, "")
	want := "function foo(a: number): string { … }\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFlatten_ClassAttribute(t *testing.T) {
	src := "class Foo {\n  x: number;\n}\n"
	got := render(t, src, "")
	want := "class Foo {\n    x: number\n}\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
