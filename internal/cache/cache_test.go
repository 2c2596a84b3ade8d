package cache

import (
	"path/filepath"
	"testing"

	"github.com/codeglass/structlens/internal/config"
	"github.com/codeglass/structlens/internal/treetoken"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_MissThenHit(t *testing.T) {
	s := openTestStore(t)
	key := NewKey("def foo(): pass\n", config.LanguagePython, "simplified:    ")

	if _, ok, err := s.Get(key); err != nil {
		t.Fatalf("Get: %v", err)
	} else if ok {
		t.Fatal("expected miss before Put")
	}

	want := []Entry{{Text: "def foo(): …\n", TokenType: treetoken.KindFunction}}
	if err := s.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if len(got) != 1 || got[0].Text != want[0].Text || got[0].TokenType != want[0].TokenType {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStore_PutOverwritesSameKey(t *testing.T) {
	s := openTestStore(t)
	key := NewKey("x", config.LanguagePython, "faithful:0")

	if err := s.Put(key, []Entry{{Text: "first"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(key, []Entry{{Text: "second"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Text != "second" {
		t.Fatalf("got %+v, want single entry %q", got, "second")
	}
}

func TestNewKey_DifferentSourceDifferentHash(t *testing.T) {
	a := NewKey("alpha", config.LanguagePython, "faithful:0")
	b := NewKey("beta", config.LanguagePython, "faithful:0")
	if a.SourceHash == b.SourceHash {
		t.Fatal("expected distinct source hashes for distinct source text")
	}
}

func TestFromAndToTreeTokens_RoundTrip(t *testing.T) {
	orig := []treetoken.TreeToken{
		{Text: "class Foo {\n", TokenType: treetoken.KindClass},
		{Text: "}\n", TokenType: treetoken.KindClass},
	}
	got := ToTreeTokens(FromTreeTokens(orig))
	if len(got) != len(orig) {
		t.Fatalf("got %d tokens, want %d", len(got), len(orig))
	}
	for i := range orig {
		if got[i].Text != orig[i].Text || got[i].TokenType != orig[i].TokenType {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], orig[i])
		}
		if got[i].OriginalNode != nil {
			t.Fatalf("entry %d: expected nil OriginalNode after round trip", i)
		}
	}
}
