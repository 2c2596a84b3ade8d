package pylex_test

import (
	"testing"

	"github.com/codeglass/structlens/internal/pylex"
	"github.com/codeglass/structlens/internal/token"
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
		"class A:\n    x: int = 1\n",
		"def m(self, n: int) -> bool:\n    \"\"\"doc\"\"\"\n    return n > 0\n",
		"x = (1 +\n 2)\n",
		"# a comment\nimport os\n",
		"s = ''\nt = \"\"\n",
	}
	for _, src := range sources {
		toks, err := pylex.Tokenize(src)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", src, err)
		}
		if got := concatText(toks); got != src {
			t.Fatalf("round trip mismatch: got %q, want %q", got, src)
		}
		offset := 0
		for _, tok := range toks {
			if tok.Range.Start != offset {
				t.Fatalf("token %q: expected start %d got %d", tok.Text, offset, tok.Range.Start)
			}
			offset = tok.Range.End
		}
	}
}

func TestTokenize_BraceAndCommaAreSingleCharTokens(t *testing.T) {
	toks, err := pylex.Tokenize("(a,b)")
	if err != nil {
		t.Fatal(err)
	}
	wantKinds := []token.Kind{token.Brace, token.Other, token.Comma, token.Other, token.Brace}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got kind %v, want %v (%q)", i, toks[i].Kind, k, toks[i].Text)
		}
	}
}

func TestTokenize_SingleLineCommentEndsAtNewline(t *testing.T) {
	toks, err := pylex.Tokenize("# hi\nx")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != token.SinglelineComment || toks[0].Text != "# hi" {
		t.Fatalf("got first token %+v", toks[0])
	}
	if toks[1].Kind != token.Spacing || toks[1].Text != "\n" {
		t.Fatalf("got second token %+v", toks[1])
	}
}

func TestTokenize_TripleQuoteIsMultilineCommentOrString(t *testing.T) {
	toks, err := pylex.Tokenize(`"""doc"""`)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.MultilineCommentOrString {
		t.Fatalf("got %+v", toks)
	}
	if toks[0].Text != `"""doc"""` {
		t.Fatalf("got text %q", toks[0].Text)
	}
}

func TestTokenize_EscapedQuoteDoesNotCloseString(t *testing.T) {
	toks, err := pylex.Tokenize(`'a\'b'`)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.String {
		t.Fatalf("got %+v", toks)
	}
}

func TestTokenize_EmptyStringLiteral(t *testing.T) {
	toks, err := pylex.Tokenize(`''`)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.String || toks[0].Text != "''" {
		t.Fatalf("got %+v", toks)
	}
}

func TestTokenize_UnterminatedStringReportsError(t *testing.T) {
	_, err := pylex.Tokenize(`x = 'abc`)
	if err == nil {
		t.Fatal("expected an unterminated-string error")
	}
	ue, ok := err.(*pylex.UnterminatedError)
	if !ok {
		t.Fatalf("expected *pylex.UnterminatedError, got %T", err)
	}
	if ue.What != "string" {
		t.Fatalf("got what=%q", ue.What)
	}
}

func TestTokenize_UnterminatedTripleQuoteReportsError(t *testing.T) {
	_, err := pylex.Tokenize(`"""doc`)
	if err == nil {
		t.Fatal("expected an unterminated triple-quote error")
	}
	ue, ok := err.(*pylex.UnterminatedError)
	if !ok {
		t.Fatalf("expected *pylex.UnterminatedError, got %T", err)
	}
	if ue.What == "" {
		t.Fatal("expected a non-empty What")
	}
}

func TestTokenize_ColonIsOther(t *testing.T) {
	toks, err := pylex.Tokenize("x:int")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != token.Other {
		t.Fatalf("expected a single OTHER run, got %+v", toks)
	}
}
