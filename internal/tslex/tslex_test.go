package tslex_test

import (
	"testing"

	"github.com/codeglass/structlens/internal/token"
	"github.com/codeglass/structlens/internal/tslex"
)

func concatText(toks []token.Token) string {
	var out string
	for _, t := range toks {
		out += t.Text
	}
	return out
}

func TestTokenize_LexRoundTrip(t *testing.T) {
	sources := []string{
		`import {X} from "./mod";` + "\n" + `class B { y: string = "hi"; fn(a: number): void { return; } }` + "\n",
		"/** hello */\nfunction f() {}\n",
		"// line comment\nconst x = 1;\n",
		"const go = () => x;\n",
		"let s = `multi\nline`;\n",
	}
	for _, src := range sources {
		toks, err := tslex.Tokenize(src)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", src, err)
		}
		if got := concatText(toks); got != src {
			t.Fatalf("round trip mismatch: got %q, want %q", got, src)
		}
	}
}

func TestTokenize_LineCommentDetectedViaMatcher(t *testing.T) {
	toks, err := tslex.Tokenize("a // hi\nb")
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, tok := range toks {
		if tok.Kind == token.SinglelineComment {
			found = true
			if tok.Text != "// hi" {
				t.Fatalf("got comment text %q", tok.Text)
			}
		}
	}
	if !found {
		t.Fatalf("expected a SinglelineComment token, got %+v", toks)
	}
}

func TestTokenize_MultilineCommentIsSingleToken(t *testing.T) {
	toks, err := tslex.Tokenize("/** hello */")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.MultilineCommentOrString {
		t.Fatalf("got %+v", toks)
	}
	if toks[0].Text != "/** hello */" {
		t.Fatalf("got text %q", toks[0].Text)
	}
}

func TestTokenize_SemicolonIsSpacing(t *testing.T) {
	toks, err := tslex.Tokenize("a;")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 2 || toks[1].Kind != token.Spacing || toks[1].Text != ";" {
		t.Fatalf("got %+v", toks)
	}
}

func TestTokenize_ArrowIsSingleOtherToken(t *testing.T) {
	toks, err := tslex.Tokenize("()=>{}")
	if err != nil {
		t.Fatal(err)
	}
	wantKinds := []token.Kind{token.Brace, token.Brace, token.Other, token.Brace, token.Brace}
	wantTexts := []string{"(", ")", "=>", "{", "}"}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(wantKinds), toks)
	}
	for i := range wantKinds {
		if toks[i].Kind != wantKinds[i] || toks[i].Text != wantTexts[i] {
			t.Fatalf("token %d: got {%v %q}, want {%v %q}", i, toks[i].Kind, toks[i].Text, wantKinds[i], wantTexts[i])
		}
	}
}

func TestTokenize_BacktickStringSpansNewlines(t *testing.T) {
	toks, err := tslex.Tokenize("`a\nb`")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.String || toks[0].Text != "`a\nb`" {
		t.Fatalf("got %+v", toks)
	}
}

func TestTokenize_UnterminatedMultilineCommentReportsError(t *testing.T) {
	_, err := tslex.Tokenize("/* oops")
	if err == nil {
		t.Fatal("expected an unterminated multi-line comment error")
	}
	if _, ok := err.(*tslex.UnterminatedError); !ok {
		t.Fatalf("expected *tslex.UnterminatedError, got %T", err)
	}
}

func TestTokenize_ColonAndAngleBracketsAreOther(t *testing.T) {
	toks, err := tslex.Tokenize("a:b<c>")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.Other {
		t.Fatalf("expected a single OTHER run, got %+v", toks)
	}
}
