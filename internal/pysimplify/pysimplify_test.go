package pysimplify

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

func TestFlatten_ClassWithDocstringAndMethod(t *testing.T) {
	src := "class Foo:\n    \"\"\"doc\"\"\"\n    def bar(self, x):\n        return x\n"
	got := render(t, src, "")
	want := "class Foo:\n    /* doc */\n    def bar(self, x): …\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFlatten_CustomIndentUnit(t *testing.T) {
	src := "class Foo:\n    def bar(self):\n        return 1\n"
	got := render(t, src, "  ")
	want := "class Foo:\n  def bar(self): …\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFlatten_EmptyClassGetsEllipsisShell(t *testing.T) {
	src := "class Foo:\n    x = 1\n"
	got := render(t, src, "")
	want := "class Foo:\n    …\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFlatten_TopLevelFunctionDocstringSurfaces(t *testing.T) {
	src := "def bar(x):\n    \"\"\"doc\"\"\"\n    return x\n"
	got := render(t, src, "")
	want := "/* doc */\ndef bar(x): …\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFlatten_TypedAttributeRenders(t *testing.T) {
	src := "class Foo:\n    x: int\n"
	got := render(t, src, "")
	want := "class Foo:\n    x: int\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
