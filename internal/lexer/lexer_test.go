package lexer_test

import (
	"reflect"
	"testing"

	"github.com/codeglass/structlens/internal/lexer"
	"github.com/codeglass/structlens/internal/token"
)

// toyDetector groups runs of digits as token.String, runs of spaces as
// token.Spacing, and treats 'x' as a split point: everything buffered
// before 'x' closes out as token.Other and 'x' itself emits as a
// one-character token.Brace (exercising EmitSplit), while 'r' and any
// change of run class retain the new character as the start of the
// next token (exercising EmitRetainSuffix).
type toyDetector struct {
	mode byte // 0 = none, 'd' = digits, 's' = spaces
}

func (d *toyDetector) Reset() { d.mode = 0 }

func (d *toyDetector) classOf(ch byte) byte {
	switch {
	case ch >= '0' && ch <= '9':
		return 'd'
	case ch == ' ':
		return 's'
	default:
		return 'o'
	}
}

func (d *toyDetector) MatchNext(ch byte) lexer.Action {
	if ch == 'x' {
		d.mode = 0
		return lexer.EmitSplit(token.Other, token.Brace, 1)
	}
	if ch == 'r' {
		d.mode = 0
		return lexer.EmitRetainSuffix(token.Other, 1)
	}
	cls := d.classOf(ch)
	if d.mode == 0 {
		d.mode = cls
		return lexer.Keep()
	}
	if cls == d.mode {
		return lexer.Keep()
	}
	prev := d.mode
	d.mode = cls
	kind := token.Other
	if prev == 'd' {
		kind = token.String
	} else if prev == 's' {
		kind = token.Spacing
	}
	return lexer.EmitRetainSuffix(kind, 1)
}

func (d *toyDetector) MatchEndCharacter() lexer.Action {
	kind := token.Other
	switch d.mode {
	case 'd':
		kind = token.String
	case 's':
		kind = token.Spacing
	}
	return lexer.EmitAll(kind)
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestLexer_EmitAllAtEndOfStream(t *testing.T) {
	toks, _, bad := lexer.Tokenize(&toyDetector{}, "123")
	if bad {
		t.Fatal("unexpected unterminated result")
	}
	if !reflect.DeepEqual(kinds(toks), []token.Kind{token.String}) {
		t.Fatalf("got kinds %v", kinds(toks))
	}
	if texts(toks)[0] != "123" {
		t.Fatalf("got text %q", texts(toks)[0])
	}
}

func TestLexer_RetainSuffixOnModeChange(t *testing.T) {
	toks, _, _ := lexer.Tokenize(&toyDetector{}, "12 3")
	wantKinds := []token.Kind{token.String, token.Spacing, token.String}
	wantTexts := []string{"12", " ", "3"}
	if !reflect.DeepEqual(kinds(toks), wantKinds) {
		t.Fatalf("got kinds %v, want %v", kinds(toks), wantKinds)
	}
	if !reflect.DeepEqual(texts(toks), wantTexts) {
		t.Fatalf("got texts %v, want %v", texts(toks), wantTexts)
	}
}

func TestLexer_EmitSplitViaDirective(t *testing.T) {
	toks, _, _ := lexer.Tokenize(&toyDetector{}, "abx")
	wantTexts := []string{"ab", "x"}
	wantKinds := []token.Kind{token.Other, token.Brace}
	if !reflect.DeepEqual(texts(toks), wantTexts) {
		t.Fatalf("got texts %v, want %v", texts(toks), wantTexts)
	}
	if !reflect.DeepEqual(kinds(toks), wantKinds) {
		t.Fatalf("got kinds %v, want %v", kinds(toks), wantKinds)
	}
}

func TestLexer_EmitRetainSuffixKeepsTailBuffered(t *testing.T) {
	toks, _, _ := lexer.Tokenize(&toyDetector{}, "abr99")
	// "ab" closes out on 'r' via EmitRetainSuffix: "ab" is emitted as
	// Other and "r" is retained. 'r' resets the mode, so the following
	// '9' opens a digit run in the same buffer and "r99" is emitted as a
	// single String token at end of stream.
	if len(toks) < 2 {
		t.Fatalf("expected at least 2 tokens, got %v", texts(toks))
	}
	if toks[0].Text != "ab" {
		t.Fatalf("expected first token %q, got %q", "ab", toks[0].Text)
	}
	// reconstruct full text losslessly
	var rebuilt string
	for _, tok := range toks {
		rebuilt += tok.Text
	}
	if rebuilt != "abr99" {
		t.Fatalf("lossless round trip failed: got %q", rebuilt)
	}
}

func TestLexer_PanicsOnFeedAfterEnd(t *testing.T) {
	l := lexer.New(&toyDetector{})
	l.Feed('1')
	l.End()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic feeding after End")
		}
	}()
	l.Feed('2')
}

func TestLexer_RangesAreContiguousAndLossless(t *testing.T) {
	src := "12 34 x"
	toks, _, _ := lexer.Tokenize(&toyDetector{}, src)
	offset := 0
	for _, tok := range toks {
		if tok.Range.Start != offset {
			t.Fatalf("token %q: expected start %d, got %d", tok.Text, offset, tok.Range.Start)
		}
		if tok.Range.End != offset+len(tok.Text) {
			t.Fatalf("token %q: range length mismatch", tok.Text)
		}
		offset = tok.Range.End
	}
	if offset != len(src) {
		t.Fatalf("expected tokens to cover the whole source, got %d of %d bytes", offset, len(src))
	}
}
